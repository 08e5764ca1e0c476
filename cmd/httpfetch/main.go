package main

import "github.com/frankli0324/go-http-factories/cmd/httpfetch/app"

func main() {
	app.Execute()
}
