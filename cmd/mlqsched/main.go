// Command mlqsched simulates multi-level queue CPU scheduling over a
// workload file and reports the resulting timeline.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
