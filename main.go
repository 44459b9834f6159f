package main

import "github.com/frahmantamala/stock-management/cmd"

func main() {
	cmd.Execute()
}
