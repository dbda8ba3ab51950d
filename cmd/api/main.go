package main

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-finder/api/internal/config"
	"github.com/sngm3741/store-finder/api/internal/logger"
	"github.com/sngm3741/store-finder/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗しました: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		lg.Fatalw("MongoDB 接続に失敗しました", logger.ErrorKeyvals(err)...)
	}

	app, err := server.New(ctx, cfg, lg, client)
	if err != nil {
		lg.Fatalw("サーバーの初期化に失敗しました", logger.ErrorKeyvals(err)...)
	}
	if err := app.Run(); err != nil {
		lg.Fatalw("サーバー起動に失敗", logger.ErrorKeyvals(err)...)
	}
}
