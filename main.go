package main

import "github.com/iksnae/legal-buddy/cmd"

func main() {
	cmd.Execute()
}
