package main

import (
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/cmd"
)

func main() {
	cmd.Execute()
}
