package main

import "github.com/MRSt3Ss/rat2/cmd"

func main() {
	cmd.Execute()
}
