package main

import "github.com/ValentinKolb/dPortable/cmd"

func main() {
	cmd.Execute()
}
