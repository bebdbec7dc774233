package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/davidvelascogarcia/hns/api"
	api_i "github.com/davidvelascogarcia/hns/api/i"
	routeapi "github.com/davidvelascogarcia/hns/api/route"
	"github.com/davidvelascogarcia/hns/config"
	"github.com/davidvelascogarcia/hns/grid"
	"github.com/davidvelascogarcia/hns/infrastruture/controller"
	"github.com/davidvelascogarcia/hns/infrastruture/mapstore"
	"github.com/davidvelascogarcia/hns/service"
	"github.com/davidvelascogarcia/hns/service/i"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default targets, used when the requested locations are unavailable.
var (
	defaultInit = grid.Position{Row: 2, Col: 2}
	defaultGoal = grid.Position{Row: 21, Col: 19}
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "hns",
	Short: "hns plans step-by-step routes across occupancy grid maps",
	Long: `hns computes a route across a 2-D occupancy grid using a directional
greedy heuristic, and can stream each step as a motion command to an
external controller, waiting for a per-step acknowledgement.`,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a route on a map and optionally drive an external controller",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		mapName, _ := cmd.Flags().GetString("map")
		initFlag, _ := cmd.Flags().GetString("init")
		goalFlag, _ := cmd.Flags().GetString("goal")
		withController, _ := cmd.Flags().GetBool("controller")
		transport, _ := cmd.Flags().GetString("transport")
		target, _ := cmd.Flags().GetString("target")
		response, _ := cmd.Flags().GetString("response")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger().WithField("component", "hns")

		start, err := parseCoordinate(initFlag)
		if err != nil {
			return fmt.Errorf("parsing --init: %w", err)
		}
		goal, err := parseCoordinate(goalFlag)
		if err != nil {
			return fmt.Errorf("parsing --goal: %w", err)
		}

		g, err := mapstore.NewCSVRepo(dir).ByName(ctx, mapName)
		if err != nil {
			return err
		}

		start, goal = resolveTargets(g, start, goal, logger)
		if err := g.AssignTargets(start, goal); err != nil {
			return fmt.Errorf("assigning targets: %w", err)
		}

		fmt.Printf("Init coordinates: %s\nGoal coordinates: %s\nMap:\n%s\n", start, goal, g)

		var stepController i.StepController
		if withController {
			switch transport {
			case "redis":
				client := goredis.NewClient(&goredis.Options{
					Addr:     config.Envs.RedisAddr,
					Password: config.Envs.RedisPass,
				})
				defer client.Close()
				stepController = controller.NewRedisController(client, target, response,
					controller.RedisWithAckTimeout(ackTimeout()),
					controller.RedisWithLogger(logger.WithField("component", "controller")),
				)
			case "udp":
				udpController, err := controller.NewUDPController(response, target,
					controller.UDPWithAckTimeout(ackTimeout()),
					controller.UDPWithLogger(logger.WithField("component", "controller")),
				)
				if err != nil {
					return err
				}
				defer udpController.Close()
				stepController = udpController
			default:
				return fmt.Errorf("unknown transport %q (want redis or udp)", transport)
			}
		}

		navigator := service.NewNavigator(stepController, logger)
		result, err := navigator.Plan(ctx, g, start, goal)
		if result != nil {
			printResume(result)
		}
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve route planning over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Envs
		gin.SetMode(cfg.GinMode)
		logger := newLogger().WithField("component", "api")

		var maps i.MapRepo
		switch cfg.MapStore {
		case "mongo":
			maps = initMongoMaps(cfg, logger)
		default:
			maps = mapstore.NewCSVRepo(cfg.MapDir)
		}

		navigator := service.NewNavigator(nil, logger)
		router := api.NewRouter(api.Config{
			Addr:        fmt.Sprintf("%s:%v", cfg.HostIP, cfg.RESTPort),
			BaseURL:     "/api",
			Controllers: []api_i.Controller{routeapi.NewController(maps, navigator)},
		})

		logger.WithField("addr", fmt.Sprintf("%s:%v", cfg.HostIP, cfg.RESTPort)).Info("serving")
		if err := router.Run(); err != nil {
			logger.WithError(err).Error("starting server")
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "dev" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
		}
		cmd.Printf("hns version %s\n", v)
	},
}

// initMongoMaps connects to MongoDB and returns the stored-map repository.
func initMongoMaps(cfg config.Config, logger *logrus.Entry) i.MapRepo {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uri := fmt.Sprintf("mongodb://%s:%v", cfg.DBHost, cfg.DBPort)
	if cfg.DBUser != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%v", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.WithError(err).Error("connecting to MongoDB")
		os.Exit(1)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.WithError(err).Error("MongoDB ping failed")
		os.Exit(1)
	}

	logger.Info("connected to MongoDB")
	return mapstore.NewMongoRepo(client, cfg.DBName, cfg.DBCollection)
}

// newLogger builds the application logger. Level and format come from the
// LOG_LEVEL and LOG_FORMAT environment variables.
func newLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetOutput(os.Stdout)
	return logger
}

func getenvDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// resolveTargets falls back per coordinate: an unavailable start or goal
// reverts to its own default without dragging the other along.
func resolveTargets(g *grid.Grid, start, goal grid.Position, logger *logrus.Entry) (grid.Position, grid.Position) {
	if !g.IsTraversable(start) {
		logger.WithField("requested", start.String()).Warn("start location unavailable, using default")
		start = defaultInit
	}
	if !g.IsTraversable(goal) || goal == start {
		logger.WithField("requested", goal.String()).Warn("goal location unavailable, using default")
		goal = defaultGoal
	}
	return start, goal
}

// parseCoordinate reads a "row,col" pair.
func parseCoordinate(s string) (grid.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Position{}, fmt.Errorf("want row,col, got %q", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Position{}, err
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Position{}, err
	}
	return grid.Position{Row: row, Col: col}, nil
}

func ackTimeout() time.Duration {
	return time.Duration(config.Envs.AckTimeoutMS) * time.Millisecond
}

// printResume prints the end-of-run summary and the crossed trail.
func printResume(result *service.Result) {
	fmt.Println(result.Grid.String())

	statusColor := config.ColorGreen
	switch result.Status {
	case service.StatusDeadlocked:
		statusColor = config.ColorYellow
	case service.StatusControllerFailed, service.StatusFailed:
		statusColor = config.ColorRed
	}

	fmt.Println("Resume:")
	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Printf("Status: %s%s%s\n", statusColor, result.Status, config.ColorReset)
	fmt.Printf("Steps: %d\n", result.StepCount)
	fmt.Printf("Elapsed time: %s\n", result.Elapsed)
	if result.StalledAt != nil {
		fmt.Printf("Stalled at: %s\n", result.StalledAt)
	}
}

func init() {
	planCmd.Flags().String("dir", "./maps", "Directory containing map files")
	planCmd.Flags().String("map", "map11.csv", "Map identifier inside the map directory")
	planCmd.Flags().String("init", "2,2", "Start location as row,col")
	planCmd.Flags().String("goal", "21,19", "Goal location as row,col")
	planCmd.Flags().Bool("controller", false, "Stream each step to an external controller and wait for acknowledgements")
	planCmd.Flags().String("transport", "redis", "Controller channel transport: redis or udp")
	planCmd.Flags().String("target", "hns:commands", "Outbound endpoint: redis command key, or executor UDP address")
	planCmd.Flags().String("response", "hns:acks", "Inbound endpoint: redis ack key, or local UDP listen address")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// plan is the default when no subcommand is provided.
	rootCmd.RunE = planCmd.RunE
	rootCmd.Flags().AddFlagSet(planCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
