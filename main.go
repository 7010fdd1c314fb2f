package main

import "github.com/AeryAnubhav/curl/cmd"

func main() {
	cmd.Execute()
}
