package main

import "time"

type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	HistoryLimit    int           `env:"HISTORY_LIMIT,default=50"`
	MaxFrameSize    int64         `env:"MAX_FRAME_SIZE,default=4096"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}
