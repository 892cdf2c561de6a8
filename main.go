/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/REGINA562/new-project/cmd"

func main() {
	cmd.Execute()
}
