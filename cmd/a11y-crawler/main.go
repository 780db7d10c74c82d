package main

import cmd "github.com/rohmanhakim/a11y-crawler/internal/cli"

func main() {
	cmd.Execute()
}
