// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/b64drop/b64drop/cmd/b64drop"

func main() {
	cmd.Execute()
}
