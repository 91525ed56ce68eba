// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"lunu-cli/internal/config"
	"lunu-cli/internal/payload"
	"lunu-cli/pkg/sfx"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// buildOutput overrides the derived output path
	buildOutput string
	// buildForce bypasses the runtime payload cache
	buildForce bool
	// buildStub overrides the launcher stub template location
	buildStub string
	// buildRuntime overrides the manifest's runtime binary path
	buildRuntime string
	// buildHoldConsole controls the hold-console flag baked into the payload
	buildHoldConsole bool
	// buildHoldConsoleSet tracks whether the flag was given explicitly
	buildHoldConsoleSet bool

	// buildCmd assembles a standalone executable from a script
	buildCmd = &cobra.Command{
		Use:   "build <script>",
		Short: "Build a script into a standalone executable",
		Long: `Build a Luau script into a self-extracting standalone executable.

The output lands in the current working directory, named after the script
with the platform executable suffix. The project root is found by walking
up from the script looking for lunu.toml.

Examples:
  lunu build game.luau
  lunu build src/main.luau --output dist/game.exe
  lunu build game.luau --force --hold-console=false`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output path (default: derived from the script name, in the current directory)")
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "rebuild the runtime payload, ignoring the cache")
	buildCmd.Flags().StringVar(&buildStub, "stub", "", "launcher stub template (default: lunu-stub next to this executable)")
	buildCmd.Flags().StringVar(&buildRuntime, "runtime", "", "runtime binary to bundle (default: from lunu.toml)")
	buildCmd.Flags().BoolVar(&buildHoldConsole, "hold-console", true, "keep the console open after the script finishes")
}

func runBuild(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]
	buildHoldConsoleSet = cmd.Flags().Changed("hold-console")

	fmt.Println(TitleStyle.Render("lunu build ") + StepStyle.Render(getVersionString()))

	scriptData, err := os.ReadFile(scriptPath)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to read script %q: %w", scriptPath, err)}
	}

	root, cfg, err := config.FindProjectRoot(filepath.Dir(scriptPath))
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	if buildRuntime != "" {
		cfg.Runtime.Path = buildRuntime
	}
	holdConsole := cfg.Stub.HoldConsole
	if buildHoldConsoleSet {
		holdConsole = buildHoldConsole
	}
	logger.Debug("project resolved", "root", root, "runtime", cfg.Runtime.Path)
	fmt.Println(StepStyle.Render(fmt.Sprintf("[1/4] Project root: %s", root)))

	runtimeEntries, err := collectRuntimePayload(root, cfg)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	entries := payload.Finalize(runtimeEntries, scriptData, holdConsole)
	fmt.Println(StepStyle.Render(fmt.Sprintf("[2/4] Payload: %d entries", len(entries))))

	template, stubPath, err := readStubTemplate(root)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	logger.Debug("stub template", "path", stubPath, "bytes", len(template))

	image, err := sfx.Assemble(template, entries)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to assemble image: %w", err)}
	}
	fmt.Println(StepStyle.Render(fmt.Sprintf("[3/4] Image: %d bytes", len(image))))

	outputPath := buildOutput
	if outputPath == "" {
		outputPath = sfx.DeriveOutputName(scriptPath)
	}
	if err := writeImageAtomic(outputPath, image); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	fmt.Println(StepStyle.Render(fmt.Sprintf("[4/4] Output: %s", outputPath)))
	fmt.Println(SuccessStyle.Render("Build complete."))
	return nil
}

// collectRuntimePayload returns the script-independent payload entries,
// served from the builder cache when the project sources are unchanged.
// Cache problems degrade to a full collect; they never fail the build.
func collectRuntimePayload(root string, cfg *config.Config) ([]sfx.Entry, error) {
	cacheDir, cacheErr := payload.CacheDir()
	digest := ""
	if cacheErr == nil {
		digest, cacheErr = payload.SourceDigest(root, cfg)
	}

	if cacheErr == nil && !buildForce {
		if entries, ok := payload.LoadCachedRuntime(cacheDir, digest); ok {
			logger.Debug("runtime payload cache hit", "entries", len(entries))
			return entries, nil
		}
	}

	entries, err := payload.CollectRuntime(root, cfg)
	if err != nil {
		return nil, err
	}

	if cacheErr == nil {
		if storeErr := payload.StoreCachedRuntime(cacheDir, digest, entries); storeErr != nil {
			fmt.Println(WarningStyle.Render("Warning: ") + storeErr.Error())
		}
	}
	return entries, nil
}

// readStubTemplate loads the launcher stub the archive gets appended to.
// Resolution order: the --stub flag, then lunu-stub next to the builder
// executable, then bin/lunu-stub under the project root.
func readStubTemplate(root string) ([]byte, string, error) {
	stubName := "lunu-stub" + sfx.ExeSuffix()

	var candidates []string
	if buildStub != "" {
		candidates = []string{buildStub}
	} else {
		if selfPath, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(selfPath), stubName))
		}
		candidates = append(candidates, filepath.Join(root, "bin", stubName))
	}

	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return data, c, nil
		}
	}
	return nil, "", fmt.Errorf("launcher stub not found (tried %v); pass --stub", candidates)
}

// writeImageAtomic writes the image next to its final path and renames it
// into place, so a failed build never leaves a half-written executable at
// the output path.
func writeImageAtomic(outputPath string, image []byte) error {
	tmpPath := fmt.Sprintf("%s.%s.tmp", outputPath, uuid.NewString())
	if err := os.WriteFile(tmpPath, image, 0o755); err != nil {
		return fmt.Errorf("failed to write %q: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
