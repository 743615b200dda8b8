// Command mcch-contract builds a multi-criteria road graph from an OSM
// PBF extract and runs contraction hierarchy preprocessing over it,
// adapted from the teacher's cmd/preprocess: same bounding-box flags and
// pipeline shape (parse, build, largest component, contract), generalized
// to cost vectors and a long-lived LP oracle child process instead of a
// single scalar-weight CH contractor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"mcch/pkg/lpclient"
	"mcch/pkg/mcch"
	"mcch/pkg/mcgraph"
	"mcch/pkg/osmingest"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "Path to write the augmented graph binary")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: mcch-contract --input <file.osm.pbf> [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	var opts osmingest.ParseOptions
	switch {
	case *kl:
		opts.BBox = osmingest.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
		log.Println("Using Selangor + KL bounding box filter")
	case *singapore:
		opts.BBox = osmingest.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
		log.Println("Using Singapore bounding box filter")
	case *bbox != "":
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmingest.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()

	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parseResult, err := osmingest.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	log.Println("Building graph...")
	g := osmingest.BuildGraph(parseResult)
	log.Printf("Graph: %d nodes, %d edges, dim=%d", g.NumNodes, g.NumEdges, g.Dim)

	log.Println("Extracting largest connected component...")
	componentNodes := mcgraph.LargestComponent(g)
	log.Printf("Largest component: %d nodes (%.1f%%)", len(componentNodes), float64(len(componentNodes))/float64(g.NumNodes)*100)
	g = mcgraph.FilterToComponent(g, componentNodes)
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	log.Println("Starting LP oracle child process...")
	lp, err := lpclient.Start(g.Dim)
	if err != nil {
		log.Fatalf("Failed to start LP solver: %v", err)
	}
	defer lp.Close()

	log.Println("Running multi-criteria contraction hierarchy preprocessing...")
	result, err := mcch.Contract(g, lp)
	if err != nil {
		log.Fatalf("Contraction failed: %v", err)
	}
	log.Printf("Contraction complete: %d shortcuts", len(result.Shortcuts))

	augmented := result.AugmentedGraph(g)

	log.Printf("Writing augmented graph to %s...", *output)
	if err := mcgraph.WriteBinary(*output, augmented); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	elapsed := time.Since(start)
	log.Printf("Done in %s. Augmented graph: %d nodes, %d edges (%d original + %d shortcuts)",
		elapsed.Round(time.Second), augmented.NumNodes, augmented.NumEdges, g.NumEdges, len(result.Shortcuts))
}
