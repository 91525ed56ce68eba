// SPDX-License-Identifier: MPL-2.0

// Command lunu is the builder CLI: it packages a Luau script together with
// the project's bundled runtime into a single self-extracting executable.
package main

func main() {
	Execute()
}
