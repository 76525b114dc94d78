package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/nvr-ai/go-filters/accel"
	"github.com/nvr-ai/go-filters/capture"
	"github.com/nvr-ai/go-filters/capture/camera"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	keyEscape = 27
	keyQuit   = 'q'
	keyFilter = 'f'
	keyMode   = 's'
)

func main() {
	var (
		deviceID   = flag.Int("device", 0, "Video capture device index")
		filterName = flag.String("filter", "Canny", "Initial filter")
		strategy   = flag.String("strategy", "Multithread", "Initial strategy: Sequential, Parallel, Multithread or GPU")
		workers    = flag.Int("workers", 0, "Multithread worker count; 0 uses every hardware thread")
		width      = flag.Int("width", 0, "Requested frame width")
		height     = flag.Int("height", 0, "Requested frame height")
		fps        = flag.Int("fps", 0, "Requested frame rate")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if *logLevel != "" {
		logger.SetLevel(*logLevel)
	}

	f, err := processor.ParseFilter(*filterName)
	if err != nil {
		logger.WithError(err).Fatal("invalid filter")
	}
	s, err := processor.ParseStrategy(*strategy)
	if err != nil {
		logger.WithError(err).Fatal("invalid strategy")
	}

	proc := processor.New(
		processor.WithWorkers(*workers),
		processor.WithAccelerator(accel.Probe(accel.DefaultOptions())),
	)

	grabber := capture.New(camera.Opener(*deviceID))
	if err := grabber.Start(); err != nil {
		logger.WithError(err).Fatal("failed to start capture")
	}
	defer grabber.Stop()

	if *width > 0 && *height > 0 {
		if err := grabber.SetResolution(*width, *height); err != nil {
			logger.WithError(err).Warn("resolution not applied")
		}
	}
	if *fps > 0 {
		if err := grabber.SetFPS(*fps); err != nil {
			logger.WithError(err).Warn("frame rate not applied")
		}
	}
	w, h := grabber.Resolution()
	logger.WithFields(logrus.Fields{
		"device": *deviceID,
		"size":   fmt.Sprintf("%dx%d", w, h),
		"fps":    grabber.FPS(),
	}).Info("capture started, press f to change filter, s to change strategy, q to quit")

	window := gocv.NewWindow("go-filters")
	defer window.Close()

	green := color.RGBA{0, 255, 0, 0}
	meter := capture.NewFPSMeter(time.Second, time.Now())
	filters := processor.AllFilters()
	strategies := processor.AllStrategies()

	for grabber.IsRunning() {
		if !grabber.HasNewFrame() {
			if key := window.WaitKey(1); key >= 0 {
				f, s = handleKey(key, f, s, filters, strategies)
				if f < 0 {
					return
				}
			}
			continue
		}

		frame := grabber.Frame()
		res := proc.ProcessFrame(frame, f, s)
		out := frame
		if res.Success {
			out = res.Image
		}

		mat, err := camera.ToMat(out)
		if err != nil {
			logger.WithError(err).Warn("failed to convert frame")
			continue
		}
		if mat.Channels() == 1 {
			gocv.CvtColor(mat, &mat, gocv.ColorGrayToBGR)
		}

		rate := meter.Tick(time.Now())
		label := fmt.Sprintf("%s / %s  %.2f ms  %.1f FPS", f, s, res.ElapsedMs, rate)
		gocv.PutText(&mat, label, image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, green, 2)

		window.IMShow(mat)
		mat.Close()

		if key := window.WaitKey(1); key >= 0 {
			f, s = handleKey(key, f, s, filters, strategies)
			if f < 0 {
				return
			}
		}
	}
}

// handleKey cycles the filter or strategy; a negative filter means quit.
func handleKey(key int, f processor.FilterID, s processor.StrategyID, filters []processor.FilterID, strategies []processor.StrategyID) (processor.FilterID, processor.StrategyID) {
	switch key {
	case keyEscape, keyQuit:
		return -1, s
	case keyFilter:
		f = filters[(int(f)+1)%len(filters)]
	case keyMode:
		s = strategies[(int(s)+1)%len(strategies)]
	default:
		return f, s
	}
	logger.WithFields(logrus.Fields{"filter": f.String(), "strategy": s.String()}).Info("switched")
	return f, s
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Live preview of a filter and strategy over a webcam feed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n  %s -device 0 -filter Sobel -strategy Parallel\n", name)
	}
}
