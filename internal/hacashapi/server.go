package hacashapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/hacash/node/common/exiter"
	"github.com/hacash/node/log"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodySize     = 4 * 1024 * 1024
	maxRateDelay    = time.Second
)

// Config is the listener setup of the API server.
type Config struct {
	Addr        string
	CorsOrigins []string
	SubmitRate  float64 // submit requests per second, 0 disables limiting
	SubmitBurst int
}

// DefaultConfig listens on the usual api port of the node.
var DefaultConfig = Config{
	Addr:        "127.0.0.1:8081",
	CorsOrigins: []string{"*"},
	SubmitRate:  20,
	SubmitBurst: 40,
}

// Server serves the JSON API over one backend.
type Server struct {
	config  Config
	backend Backend
	relay   Relayer       // optional
	miner   PendingBlocks // optional
	limiter *rate.Limiter
	logger  *log.Logger
	quit    chan struct{} // closed on shutdown, ends websocket notices

	httpSrv *http.Server
}

func NewServer(config Config, backend Backend, relay Relayer, miner PendingBlocks, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Global
	}
	s := &Server{
		config:  config,
		backend: backend,
		relay:   relay,
		miner:   miner,
		logger:  logger,
		quit:    make(chan struct{}),
	}
	if config.SubmitRate > 0 {
		burst := config.SubmitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.SubmitRate), burst)
	}
	return s
}

// Handler returns the router with cors applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.gateway)
	mux.HandleFunc("/query/latest", s.latest)
	mux.HandleFunc("/query/block/intro", s.blockIntro)
	mux.HandleFunc("/query/block/recents", s.blockRecents)
	mux.HandleFunc("/query/balance", s.balance)
	mux.HandleFunc("/query/diamond", s.diamond)
	mux.HandleFunc("/query/fee/average", s.feeAverage)
	mux.HandleFunc("/query/transaction", s.transaction)
	mux.HandleFunc("/query/miner/pending", s.minerPending)
	mux.HandleFunc("/create/transfer", s.createTransfer)
	mux.HandleFunc("/submit/transaction", s.limited(s.submitTransaction))
	mux.HandleFunc("/submit/block", s.limited(s.submitBlock))
	mux.HandleFunc("/ws/notice", s.notice)

	origins := s.config.CorsOrigins
	if len(origins) == 0 {
		return mux
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(mux)
}

// limited throttles a submit route. Requests that would wait too long are
// refused.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		res := s.limiter.Reserve()
		if !res.OK() || res.Delay() > maxRateDelay {
			res.Cancel()
			w.WriteHeader(http.StatusTooManyRequests)
			sendError(w, "rate limiting")
			return
		}
		time.Sleep(res.Delay())
		next(w, r)
	}
}

// Start listens and serves until the worker quits.
func (s *Server) Start(w *exiter.Worker) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		w.End()
		return errors.Wrapf(err, "api server listen on %s", s.config.Addr)
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.WithField("addr", ln.Addr().String()).Info("Http api server started")
	go func() {
		<-w.Wait()
		close(s.quit)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.httpSrv.Shutdown(ctx)
	}()
	go func() {
		defer w.End()
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithField("err", err).Error("Http api server stopped")
		}
	}()
	return nil
}

func (s *Server) gateway(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		sendError(w, "api not find")
		return
	}
	w.Write([]byte("Hacash Api Server"))
}
