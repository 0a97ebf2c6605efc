package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/mw"
	"yolo-lab-api/session"
	"yolo-lab-api/stats"
	"yolo-lab-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	env := viper.GetString("workspace.env")
	var logger *zap.Logger
	switch env {
	case "DEVELOPMENT":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	return logger
}

func initConfigs(env string) {
	viper.AddConfigPath("conf")
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "__")
	viper.SetEnvKeyReplacer(replacer)

	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("labeling.keypoint_count", constants.DefaultKeypointCount)
	viper.SetDefault("labeling.min_box_size", constants.DefaultMinBoxSize)
	viper.SetDefault("labeling.brush_radius", constants.DefaultBrushRadius)
	viper.SetDefault("labeling.items_per_page", constants.DefaultItemsPerPage)
	viper.SetDefault("labeling.import_workers", constants.DefaultImportWorkers)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
}

// labelingConfig reads the labeling.* keys.
func labelingConfig() session.Config {
	cfg := session.Config{
		KeypointCount: viper.GetInt("labeling.keypoint_count"),
		MinBoxSize:    viper.GetFloat64("labeling.min_box_size"),
		BrushRadius:   viper.GetFloat64("labeling.brush_radius"),
		ItemsPerPage:  viper.GetInt("labeling.items_per_page"),
		ImportWorkers: viper.GetInt("labeling.import_workers"),
	}
	var classes []annotation.ClassInfo
	if err := viper.UnmarshalKey("labeling.classes", &classes); err != nil {
		utils.LogError(err)
	}
	cfg.Classes = classes
	return cfg
}

// newExportStorage connects to MinIO when minio.enabled is set; otherwise
// exports stay in memory.
func newExportStorage() stats.FileStorage {
	if !viper.GetBool("minio.enabled") {
		return nil
	}
	utils.LogInfo(viper.GetString("minio.uri"))
	minioClient, err := minio.New(
		viper.GetString("minio.uri"),
		&minio.Options{
			Creds:  credentials.NewStaticV4(viper.GetString("minio.access_key_id"), viper.GetString("minio.secret_access_key"), ""),
			Secure: viper.GetBool("minio.use_ssl"),
		})
	if err != nil {
		panic("Cannot connect to MinIO")
	}
	storage := stats.NewMinIOStorage(minioClient, viper.GetString("minio.bucket_name"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	utils.LogError(storage.MakeBucket(ctx))
	return storage
}

func main() {
	env := "development"
	if value, found := os.LookupEnv(constants.ENV); found && value != "" {
		env = value
	}
	initConfigs(env)

	logger := newLogger()
	defer logger.Sync()
	utils.SetLogger(logger)
	utils.LogInfo("API is running in [%s] mode", env)

	if viper.GetString("workspace.env") != "DEVELOPMENT" {
		gin.SetMode(gin.ReleaseMode)
	}
	route := gin.New()
	route.Use(gin.Recovery(), mw.RequestLogger(logger))
	route.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"POST", "PUT", "GET", "DELETE"},
		AllowHeaders:     []string{"Access-Control-Allow-Headers", "Origin", "Accept", "X-Requested-With", "Content-Type", constants.HeaderSessionID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	sessionStore := session.NewSessionStore(labelingConfig(), logger)
	labelExportStore := stats.NewLabelExportStore(newExportStorage(), logger)

	sessionAPI := session.NewSessionAPI(sessionStore, logger)
	sessionAPI.InitRoute(route, "sessions")

	stats := stats.NewLabelExportAPI(labelExportStore, sessionStore, logger)
	stats.InitRoute(route, "exports")

	route.Run("0.0.0.0:" + viper.GetString("webserver.port"))
}
