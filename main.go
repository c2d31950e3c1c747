package main

import "github.com/KaramelBytes/ontime-kpi/cmd"

func main() {
	cmd.Execute()
}
