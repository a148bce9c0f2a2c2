package main

import "github.com/ValentinKolb/sprefs/cmd"

func main() {
	cmd.Execute()
}
