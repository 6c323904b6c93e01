// Package main is the entry point of the racksdb command line tool.
package main

func main() {
	Execute()
}
