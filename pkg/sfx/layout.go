// SPDX-License-Identifier: MPL-2.0

package sfx

// Payload layout contract between the builder and the launcher. The builder
// places these paths inside the archive; the launcher resolves them inside
// the extracted tree by these exact names. Changing one side without the
// other breaks every previously built executable.
const (
	// EntryScriptPath is where the user's entry script is stored.
	EntryScriptPath = "src/main.luau"

	// HoldConsoleFile optionally carries "0"/"false"/"no" to stop the
	// launcher from holding the console open when it finishes.
	HoldConsoleFile = "lunu_open_cmd.txt"

	// RuntimeRunVerb is the subcommand the bundled runtime is invoked with:
	// "<runtime> run <script>".
	RuntimeRunVerb = "run"
)

// RuntimePath is where the bundled runtime binary is stored, with the
// build platform's executable suffix.
func RuntimePath() string {
	return "bin/lune" + ExeSuffix()
}
