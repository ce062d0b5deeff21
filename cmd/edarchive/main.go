package main

import (
	"edarchive/cmd/edarchive/commands"
	"edarchive/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
