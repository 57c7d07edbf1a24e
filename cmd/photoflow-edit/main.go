package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"photoflow/internal/database"
	"photoflow/internal/editor"
	"photoflow/internal/jobs"
	"photoflow/internal/media"
	"photoflow/internal/pipeline"
	"photoflow/internal/storage"
)

const (
	defaultDatabaseDir = "/database"
	defaultStorageDir  = "/photos"
)

type options struct {
	crop       string
	rotate     float64
	flip       string
	brightness float64
	contrast   float64
	saturation float64
	sharpness  float64
	filter     string
	resize     string
	keepAspect bool

	overwrite bool
	asNew     bool
	owner     string
	preview   string
	reparse   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.crop, "crop", "", "crop region as x,y,w,h")
	flag.Float64Var(&opts.rotate, "rotate", 0, "rotation in degrees (counter-clockwise)")
	flag.StringVar(&opts.flip, "flip", "", "mirror: horizontal or vertical")
	flag.Float64Var(&opts.brightness, "brightness", 0, "brightness adjustment, -100 to 100")
	flag.Float64Var(&opts.contrast, "contrast", 0, "contrast adjustment, -100 to 100")
	flag.Float64Var(&opts.saturation, "saturation", 0, "saturation adjustment, -100 to 100")
	flag.Float64Var(&opts.sharpness, "sharpness", 0, "sharpness adjustment, -100 to 100")
	flag.StringVar(&opts.filter, "filter", "", "filter: blur, sharpen, edge_enhance, emboss, smooth, contour, detail")
	flag.StringVar(&opts.resize, "resize", "", "target size as WxH (0 derives from aspect ratio)")
	flag.BoolVar(&opts.keepAspect, "keep-aspect", true, "fit within the resize box instead of stretching")
	flag.BoolVar(&opts.overwrite, "overwrite", false, "replace the asset's stored file")
	flag.BoolVar(&opts.asNew, "as-new", false, "save the result as a new asset")
	flag.StringVar(&opts.owner, "owner", "", "owner for -as-new (default: source asset's owner)")
	flag.StringVar(&opts.preview, "preview", "", "write a JPEG preview to this file, or - for base64 on stdout")
	flag.BoolVar(&opts.reparse, "reparse", false, "re-extract EXIF metadata and auto tags, no editing")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}
	assetID, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid asset id %q\n", flag.Arg(0))
		os.Exit(1)
	}

	terminals := 0
	for _, set := range []bool{opts.overwrite, opts.asNew, opts.preview != "", opts.reparse} {
		if set {
			terminals++
		}
	}
	if terminals != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -overwrite, -as-new, -preview, -reparse is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	if err := run(ctx, assetID, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, assetID int64, opts options) error {
	databaseDir := getEnv("DATABASE_DIR", defaultDatabaseDir)
	storageDir := getEnv("STORAGE_DIR", defaultStorageDir)

	db, err := database.New(ctx, filepath.Join(databaseDir, "photoflow.db"))
	if err != nil {
		return fmt.Errorf("failed to connect to database (check DATABASE_DIR, current: %s): %w", databaseDir, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	store, err := storage.New(storageDir)
	if err != nil {
		return err
	}

	// One-shot process: follow-up jobs run inline via the pipeline.
	pipe := pipeline.New(db, store, media.NewThumbnailer(0, 0))

	if opts.reparse {
		if err := pipe.ExtractMetadata(ctx, assetID); err != nil {
			return err
		}
		fmt.Printf("Metadata re-parsed for asset %d.\n", assetID)
		return nil
	}

	ed := editor.New(db, store, &inlineDispatcher{pipe: pipe})

	session, err := ed.Open(ctx, assetID)
	if err != nil {
		return err
	}
	if err := applyTransforms(session, opts); err != nil {
		return err
	}

	switch {
	case opts.overwrite:
		if err := session.CommitOverwrite(ctx); err != nil {
			return err
		}
		fmt.Printf("Asset %d overwritten.\n", assetID)
	case opts.asNew:
		created, err := session.CommitAsNew(ctx, opts.owner)
		if err != nil {
			return err
		}
		fmt.Printf("Saved as new asset %d (%s).\n", created.ID, created.Filename)
	default:
		encoded, err := session.Preview(0)
		if err != nil {
			return err
		}
		if opts.preview == "-" {
			fmt.Println(encoded)
			break
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.preview, raw, 0o644); err != nil {
			return err
		}
		fmt.Printf("Preview written to %s (%d bytes).\n", opts.preview, len(raw))
	}
	return nil
}

func applyTransforms(s *editor.Session, opts options) error {
	if opts.crop != "" {
		x, y, w, h, err := parseCrop(opts.crop)
		if err != nil {
			return err
		}
		s.Crop(x, y, w, h)
	}
	if opts.rotate != 0 {
		s.Rotate(opts.rotate)
	}
	if opts.flip != "" {
		s.Flip(opts.flip)
	}
	if opts.brightness != 0 {
		s.AdjustBrightness(opts.brightness)
	}
	if opts.contrast != 0 {
		s.AdjustContrast(opts.contrast)
	}
	if opts.saturation != 0 {
		s.AdjustSaturation(opts.saturation)
	}
	if opts.sharpness != 0 {
		s.AdjustSharpness(opts.sharpness)
	}
	if opts.filter != "" {
		s.ApplyFilter(opts.filter)
	}
	if opts.resize != "" {
		w, h, err := parseSize(opts.resize)
		if err != nil {
			return err
		}
		s.Resize(w, h, opts.keepAspect)
	}
	return s.Err()
}

// parseCrop parses "x,y,w,h".
func parseCrop(spec string) (x, y, w, h int, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("invalid crop %q, want x,y,w,h", spec)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid crop %q: %w", spec, err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// parseSize parses "WxH"; either side may be 0.
func parseSize(spec string) (w, h int, err error) {
	parts := strings.SplitN(strings.ToLower(spec), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", spec)
	}
	w, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", spec, err)
	}
	h, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", spec, err)
	}
	return w, h, nil
}

// inlineDispatcher runs follow-up work synchronously.
type inlineDispatcher struct {
	pipe *pipeline.Pipeline
}

func (d *inlineDispatcher) Dispatch(ctx context.Context, kind jobs.Kind, assetID int64) error {
	switch kind {
	case jobs.KindProcess:
		return d.pipe.Process(ctx, assetID)
	case jobs.KindThumbnail:
		return d.pipe.GenerateThumbnail(ctx, assetID)
	case jobs.KindMetadata:
		return d.pipe.ExtractMetadata(ctx, assetID)
	default:
		return fmt.Errorf("unknown job kind %q", kind)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "PhotoFlow Asset Editing")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage: photoflow-edit [flags] <asset-id>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintf(os.Stderr, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Fprintf(os.Stderr, "  STORAGE_DIR  - Path to photo storage root (default: %s)\n", defaultStorageDir)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
