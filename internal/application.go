package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/voro-client/internal/config"
	"github.com/rocketscienceinc/voro-client/internal/render"
	"github.com/rocketscienceinc/voro-client/internal/render/logrender"
	"github.com/rocketscienceinc/voro-client/internal/render/tui"
	"github.com/rocketscienceinc/voro-client/internal/transport/page"
	"github.com/rocketscienceinc/voro-client/internal/repository"
	"github.com/rocketscienceinc/voro-client/internal/transport/redis"
	"github.com/rocketscienceinc/voro-client/internal/transport/websocket"
	"github.com/rocketscienceinc/voro-client/internal/usecase"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if err := conf.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	endpoint, err := websocket.DeriveEndpoint(conf.GameURL)
	if err != nil {
		return fmt.Errorf("could not derive game endpoint: %w", err)
	}

	sessionID := uuid.NewString()
	log = log.With("session", sessionID, "endpoint", endpoint)

	renderers := render.Multi{}

	var screen *tui.Renderer
	if conf.Renderer == config.RendererTUI {
		screen = tui.NewRenderer()
		renderers = append(renderers, screen)
	} else {
		renderers = append(renderers, logrender.New(logger))
	}

	if conf.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		channel := redis.ChannelName(conf.Redis.ChannelPrefix, conf.GameURL)
		statusRepo := repository.NewStatusRepository(redisClient)
		renderers = append(renderers, redis.NewPublisher(logger, redisClient, channel, sessionID, statusRepo))
		log.Info("Publishing game events", "channel", channel)
	}

	jar, err := page.NewJar(conf.GameURL, conf.Cookie)
	if err != nil {
		return fmt.Errorf("could not set up cookies: %w", err)
	}

	wsClient := websocket.New(logger, endpoint, websocket.Options{
		HandshakeTimeout: conf.HandshakeTimeout,
		WriteTimeout:     conf.WriteTimeout,
		Jar:              jar,
	})
	session := usecase.NewSession(logger, sessionID, wsClient, renderers)

	if !conf.SkipBootstrap {
		update, err := page.NewFetcher(logger, jar, conf.HandshakeTimeout).InitialStatus(ctx, conf.GameURL)
		if err != nil {
			log.Warn("Could not read the initial status from the game page", "error", err)
		} else {
			session.Seed(update)
		}
	}

	// run the session loop
	sessionErrCh := make(chan error, 1)
	go func() {
		sessionErrCh <- session.Run(ctx)
	}()

	shutdown := func() error {
		cancel()
		if closeErr := wsClient.Close(); closeErr != nil {
			log.Error("could not close game connection", "error", closeErr)
		}
		if screen != nil {
			screen.Stop()
		}
		return <-sessionErrCh
	}

	log.Info("Connecting to game")
	if err = wsClient.Connect(ctx, session); err != nil {
		_ = shutdown()
		return fmt.Errorf("could not connect to game: %w", err)
	}

	if screen != nil {
		return runScreen(ctx, log, tui.NewModel(conf.GameURL, session, screen), shutdown)
	}

	select {
	case err = <-sessionErrCh:
		// the channel closed by itself; put the error back for shutdown
		sessionErrCh <- err
		log.Info("Game connection closed, shutting down")
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	if err = shutdown(); err != nil {
		return fmt.Errorf("session error: %w", err)
	}

	return nil
}

// runScreen - runs the terminal UI until the user quits or ctx is canceled.
func runScreen(ctx context.Context, log *slog.Logger, model tui.Model, shutdown func() error) error {
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, runErr := program.Run()
	log.Info("Terminal UI exited, shutting down")

	if err := shutdown(); err != nil {
		return fmt.Errorf("session error: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("terminal UI error: %w", runErr)
	}

	return nil
}
