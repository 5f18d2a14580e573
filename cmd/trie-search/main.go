package main

import "github.com/Adithya-Monish-Kumar-K/trie-search/internal/cli"

func main() {
	cli.Execute()
}
