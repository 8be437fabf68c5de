package main

import "github.com/elboulangero/exaile-webradio-title/cmd"

func main() {
	cmd.Execute()
}
