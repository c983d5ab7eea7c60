// Command bpp adds, removes and searches notes on a bpp server.
//
//	bpp add --title "Groceries" --content "milk, eggs"
//	bpp add --edit
//	bpp rm --id <id>
//	bpp search [--all] <query>
package main

func main() {
	Execute()
}
