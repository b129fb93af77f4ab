package main

import "github.com/Advansoftware/m3utostrm/cmd"

func main() {
	cmd.Execute()
}
