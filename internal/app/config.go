package app

import (
	"time"

	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/utils"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MediaRoot    string
	MediaBaseURL string

	MLBaseURL string
	MLTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	mediaRoot := utils.GetEnv("MEDIA_ROOT", "./media", log)
	mediaBaseURL := utils.GetEnv("MEDIA_BASE_URL", "http://localhost:8080/media", log)
	mlBaseURL := utils.GetEnv("ML_BASE_URL", "http://localhost:8001", log)
	mlTimeoutSeconds := utils.GetEnvAsInt("ML_TIMEOUT", 60, log)
	return Config{
		Port:            port,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		MediaRoot:       mediaRoot,
		MediaBaseURL:    mediaBaseURL,
		MLBaseURL:       mlBaseURL,
		MLTimeout:       time.Duration(mlTimeoutSeconds) * time.Second,
	}
}
