// ABOUTME: CLI entry point for depot
// ABOUTME: Dispatches to Execute; exit codes follow the scheduler's aggregated result

package main

func main() {
	Execute()
}
