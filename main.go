// Package main prints pointers to the real entry points. SP is a
// 32-bit load/store processor simulator with two independent drivers:
// a sequential reference interpreter and a cycle-accurate pipelined
// core, both sharing one memory-image format and trace convention.
//
// For the pipelined simulator, use: go run ./cmd/sp <image_path>
// For the functional reference, use: go run ./cmd/iss <image_path>
package main

import "fmt"

func main() {
	fmt.Println("sp - SP processor simulator")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/sp  [--config path.json] <image_path>  cycle-accurate pipeline")
	fmt.Println("  go run ./cmd/iss [--config path.json] <image_path>  functional reference")
	fmt.Println("  go run ./cmd/asmgen <scenario> <out_path>           emit a scenario memory image")
}
