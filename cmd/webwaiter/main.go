// Package main provides the entry point for the Web Waiter CLI.
//
// Web Waiter inspects web pages and reports their metadata, icons, social
// images, theme colors, feeds, sitemaps and detected tech stack.
//
// Usage:
//
//	webwaiter inspect <url>
//	webwaiter inspect --html -o report.html <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
