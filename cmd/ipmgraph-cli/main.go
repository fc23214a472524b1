package main

import "ipmgraph/cmd/ipmgraph-cli/cmd"

func main() {
	cmd.Execute()
}
