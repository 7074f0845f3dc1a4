// Command webview runs the webview shell from the command line: a demo
// status page, ad-hoc audio playback, and microphone recording through a
// launched browser.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
