package main

import "github.com/chriscorrea/nodellm/internal/cmd"

func main() {
	cmd.Execute()
}
