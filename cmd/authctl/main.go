// Command authctl is the operator tool for gophauth: it hashes passwords
// for seeding credentials, generates signing secrets, and issues or
// inspects session tokens.
package main

import "os"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
