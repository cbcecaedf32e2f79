// meshtool is a CLI utility for inspecting and transforming mesh files.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "demo":
		err = cmdDemo(args)
	case "info":
		err = cmdInfo(args)
	case "lod":
		err = cmdLod(args)
	case "from":
		err = cmdFrom(args)
	case "edges":
		err = cmdEdges(cfg, args)
	case "csg":
		err = cmdCSG(args)
	case "render":
		err = cmdRender(cfg, args)
	case "pick":
		err = cmdPick(args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - multi-LOD mesh utility

Usage:
  meshtool <command> [options]

Commands:
  demo [-kind sphere|box] <out>             Write a sample mesh
  info <file>                               Show LODs, materials and counts
  lod <file> <index> <out>                  Extract one LOD as a new mesh
  from <file> <index> <out>                 Keep a LOD and every coarser one
  edges [-angle a] [-precision p] <file>    Compute sharp edges (-o to save)
  csg <op> [-offset x,y,z] <a> <b> <out>    intersection, add or subtract
  render [-mode m] [-flag f] <file>         Dispatch one frame headless
  pick -from x,y,z [-to x,y,z] <file>       Find the primitive hit by a ray
  config [-o path]                          Save the effective config

Examples:
  meshtool demo sphere.mesh
  meshtool info sphere.mesh
  meshtool lod sphere.mesh 2 coarse.mesh
  meshtool edges -angle 30 -o edged.mesh sphere.mesh
  meshtool csg subtract -offset 0.5,0.5,0.5 box.mesh sphere.mesh out.mesh
  meshtool render -mode primitive-selection sphere.mesh
  meshtool pick -from 0,0,5 sphere.mesh`)
}
