package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elboulangero/exaile-webradio-title/poller"
	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/storage"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

var (
	watchStdin bool
	noStore    bool
	noSpotify  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Follow the now playing infos of the station playing url",
	Long: `Follow the now playing infos of the station playing url until interrupted.

With --stdin, playback events are read line by line from standard input:
  play <url>   start following the station playing url
  pause        stop following
  stop         stop following
  quit         exit`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchStdin, "stdin", false, "Read play/pause/stop/quit events from standard input")
	watchCmd.Flags().BoolVar(&noStore, "no-store", false, "Run without storing the now playing infos")
	watchCmd.Flags().BoolVar(&noSpotify, "no-spotify", false, "Run without looking songs up on Spotify")
	watchCmd.Flags().Duration("interval", 0, "Poll interval overriding the station's (e.g. 30s, 1m)")
	watchCmd.Flags().Int("health-port", 0, "Port of the health check server, disabled when 0")
	viperBind("interval", watchCmd.Flags().Lookup("interval"))
	viperBind("health_port", watchCmd.Flags().Lookup("health-port"))
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	if len(args) == 0 && !watchStdin {
		logger.Fatal("Nothing to watch: give a url or use --stdin")
	}

	logger.Info("Starting watch")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	notifiers := poller.Multi{poller.LogNotifier}
	if !noStore {
		store := openStore()
		defer closeStore(store)
		notifiers = append(notifiers, storage.NewRecorder(store))
	} else {
		logger.Info("Running without storage")
	}

	if settings.Spotify.Enabled && !noSpotify {
		linker := newLinker(ctx)
		go linker.Run(ctx)
		notifiers = append(notifiers, linker)
	}

	opts := []poller.Option{
		poller.WithPeriod(settings.Interval),
		poller.WithPostprocessor(scraper.Postprocessor{TitleCase: settings.TitleCase}),
	}
	health := settings.HealthPort > 0
	if health {
		opts = append(opts, poller.WithPollHook(func(r poller.PollResult) {
			utils.SetLastFetch(r.Station, r.At, r.Failures)
		}))
		utils.InitHealth(poller.FailureThreshold)
		go utils.StartHealthCheckServer(settings.HealthPort)
	}

	tracker := poller.NewTracker(scraper.NewHTTPFetcher(nil), notifiers, opts...)
	defer tracker.Close()

	h := &playbackHandler{tracker: tracker, health: health}
	if len(args) == 1 {
		h.play(args[0])
	}

	if watchStdin {
		h.serve(ctx, os.Stdin)
	} else {
		<-ctx.Done()
	}

	logger.Info("Stopped watch")
}

// playbackHandler turns playback events into tracker calls.
type playbackHandler struct {
	tracker *poller.Tracker
	health  bool
}

func (h *playbackHandler) play(url string) {
	station, err := h.tracker.Play(url)
	if err != nil {
		logger.Warnf("Not following %s: %v", url, err)
		h.setInterval(0)
		return
	}
	logger.Infof("Following %s", station.Name)

	period := station.Period
	if settings != nil && settings.Interval > 0 {
		period = settings.Interval
	}
	h.setInterval(period)
}

func (h *playbackHandler) stop() {
	h.tracker.Stop()
	h.setInterval(0)
}

func (h *playbackHandler) setInterval(d time.Duration) {
	if h.health {
		utils.SetFetchInterval(d)
	}
}

// handle runs one command line. It returns false on quit.
func (h *playbackHandler) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "play":
		if len(fields) != 2 {
			logger.Warnf("Usage: play <url>")
			return true
		}
		h.play(fields[1])
	case "pause", "stop":
		h.stop()
	case "quit":
		return false
	default:
		logger.Warnf("Unknown command: %s", fields[0])
	}
	return true
}

// serve reads commands from r until quit, end of input or ctx is done.
func (h *playbackHandler) serve(ctx context.Context, r io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Errorf("Error reading commands: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !h.handle(line) {
				return
			}
		}
	}
}
