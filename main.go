package main

import "github.com/ValentinKolb/dArr/cmd"

func main() {
	cmd.Execute()
}
