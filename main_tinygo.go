//go:build tinygo

package main

import (
	"qubic/app"
	"qubic/hal"
)

func main() {
	app.Run(hal.New())
}
