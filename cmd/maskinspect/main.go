package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/mask"
	"shadow-studio/internal/raster"
)

func main() {
	debugOut := flag.String("out", "", "Write the mask debug image here (.png or .webp)")
	despeckle := flag.Float64("despeckle", 0, "Drop islands smaller than this fraction of the mask")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: maskinspect [-out mask.png] [-despeckle 0.02] image...")
		os.Exit(2)
	}

	status := 0
	for _, path := range flag.Args() {
		img, err := imageio.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = 1
			continue
		}
		checkAlpha(img, path)

		m := mask.ExtractFromAlpha(img)
		if *despeckle > 0 {
			before := mask.Coverage(m)
			m = mask.Despeckle(m, *despeckle)
			fmt.Printf("  despeckle %.3f: coverage %.2f%% → %.2f%%\n",
				*despeckle, 100*before, 100*mask.Coverage(m))
		}
		b := mask.Bounds(m)
		fmt.Printf("  mask: coverage=%.2f%% bounds=%v contact_row=%d\n",
			100*mask.Coverage(m), b, mask.ContactRow(m))

		if *debugOut != "" && flag.NArg() == 1 {
			f, err := imageio.ParseFormat(filepath.Ext(*debugOut))
			if err == nil {
				err = imageio.Save(*debugOut, mask.Debug(m), f)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				status = 1
				continue
			}
			fmt.Printf("  wrote %s\n", *debugOut)
		}
	}
	os.Exit(status)
}

// checkAlpha prints the alpha histogram summary the mask threshold acts on.
func checkAlpha(img *raster.Image, name string) {
	var minA, maxA uint8 = 255, 0
	total := 0
	opaque := 0
	transparent := 0
	for i := 3; i < len(img.Pix); i += 4 {
		a := img.Pix[i]
		total++
		if a < minA {
			minA = a
		}
		if a > maxA {
			maxA = a
		}
		switch a {
		case 255:
			opaque++
		case 0:
			transparent++
		}
	}
	if total == 0 {
		fmt.Printf("%s: empty image\n", name)
		return
	}
	fmt.Printf("%s: %dx%d, alpha: min=%d max=%d opaque=%d/%d (%.0f%%) transparent=%.0f%%\n",
		name, img.Width, img.Height, minA, maxA, opaque, total,
		100*float64(opaque)/float64(total), 100*float64(transparent)/float64(total))
	if minA == 255 {
		fmt.Println("  warning: no transparency, the whole frame will cast a shadow")
	}
}
