/*

A simple CLI app to parse and display information about a TF2 demo
passed as a CLI argument.

*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/demostf/parser-sub001/analyser"
	"github.com/demostf/parser-sub001/gamestate"
	"github.com/demostf/parser-sub001/parser"
)

const (
	appName    = "tf2dem"
	appVersion = "v0.1.0"
	appHome    = "https://github.com/demostf/parser-sub001"
)

const (
	ExitCodeMissingArguments         = 1
	ExitCodeFailedToParseDemo        = 2
	ExitCodeFailedToCreateOutputFile = 3
)

// Flag variables
var (
	version = flag.Bool("version", false, "print version info and exit")

	header      = flag.Bool("header", true, "print demo header")
	gameState   = flag.Bool("gamestate", false, "run the game-state analyser and print its accumulated world view")
	directHits  = flag.Bool("directhits", false, "print kills attributed to a projectile that was created within one tick of the kill")
	allMessages = flag.Bool("all", false, "disable message-type filtering; decode and report every message, not just the ones an analyser declared interest in")
	outFile     = flag.String("outfile", "", "optional output file name")

	indent = flag.Bool("indent", true, "use indentation when formatting output")
)

func main() {
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(ExitCodeMissingArguments)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Failed to read demo: %v\n", err)
		os.Exit(ExitCodeFailedToParseDemo)
	}

	var an analyser.Analyser
	if *gameState || *directHits {
		an = gamestate.New()
	}

	cfg := parser.Config{AllMessages: *allMessages}

	h, output, err := parser.ParseProtected(data, an, cfg)
	if err != nil {
		fmt.Printf("Failed to parse demo: %v\n", err)
		os.Exit(ExitCodeFailedToParseDemo)
	}

	destination := os.Stdout
	if *outFile != "" {
		foutput, err := os.Create(*outFile)
		if err != nil {
			fmt.Printf("Failed to create output file: %v\n", err)
			os.Exit(ExitCodeFailedToCreateOutputFile)
		}
		defer func() {
			if err := foutput.Close(); err != nil {
				panic(err)
			}
		}()
		destination = foutput
	}

	result := map[string]any{}
	if *header {
		result["Header"] = h
	}

	if world, ok := output.(*gamestate.World); ok {
		switch {
		case *directHits:
			result["DirectHits"] = world.DirectHits()
		case *gameState:
			result["GameState"] = world
		}
	}

	enc := json.NewEncoder(destination)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
	}
}

func printVersion() {
	fmt.Println(appName, "version:", appVersion)
	fmt.Println("Platform:", runtime.GOOS, runtime.GOARCH)
	fmt.Println("Built with:", runtime.Version())
	fmt.Println("Home page:", appHome)
}

func printUsage() {
	fmt.Println("Usage:")
	name := os.Args[0]
	fmt.Printf("\t%s [FLAGS] demofile.dem\n", name)
	fmt.Println("\tRun with '-h' to see a list of available flags.")
}
