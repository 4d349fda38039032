package main

import "github.com/kozaktomas/lab-kiosk/cmd"

func main() {
	cmd.Execute()
}
