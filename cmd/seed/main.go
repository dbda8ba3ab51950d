// Command seed はローカル検証用の店舗とお気に入りをアプリケーションサービス経由で投入する。
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/infrastructure/filesystem"
	mongodoc "github.com/sngm3741/store-finder/api/internal/infrastructure/mongo"
)

type seedOptions struct {
	envName         string
	storeCount      int
	userCount       int
	heartCount      int
	withPhotos      bool
	dropCollections bool
	randomSeed      int64
}

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		log.Printf("WARN: env ファイルを読み込めませんでした: %v", err)
	}

	storeCollection := envOrDefault("STORE_COLLECTION", "stores")
	userCollection := envOrDefault("USER_COLLECTION", "users")
	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "store-finder")
	uploadDir := envOrDefault("UPLOAD_DIR", "./public/uploads")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		for _, name := range []string{storeCollection, userCollection} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Printf("WARN: コレクション %s の削除に失敗: %v", name, err)
			}
		}
		log.Printf("既存コレクションを削除しました")
	}

	if err := mongodoc.EnsureIndexes(ctx, db, storeCollection, userCollection); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	photos, err := filesystem.NewPhotoStorage(afero.NewOsFs(), uploadDir)
	if err != nil {
		log.Fatalf("アップロードディレクトリの準備に失敗しました: %v", err)
	}

	storeRepo := mongodoc.NewStoreRepository(db, storeCollection)
	userRepo := mongodoc.NewUserRepository(db, userCollection)
	commands := application.NewStoreCommandService(storeRepo, application.NewMediaIngestor(photos), mongodoc.IsDuplicateSlug)
	favorites := application.NewFavoriteService(storeRepo, userRepo)

	rng := rand.New(rand.NewSource(opts.randomSeed))
	users := generateUsers(opts.userCount)

	storeIDs := make([]string, 0, opts.storeCount)
	for i := 0; i < opts.storeCount; i++ {
		var upload *application.Upload
		if opts.withPhotos {
			upload, err = samplePhoto(rng)
			if err != nil {
				log.Fatalf("サンプル画像の生成に失敗しました: %v", err)
			}
		}
		store, err := commands.Create(ctx, randomFields(rng), upload, users[rng.Intn(len(users))])
		if err != nil {
			log.Fatalf("店舗データの挿入に失敗しました: %v", err)
		}
		storeIDs = append(storeIDs, store.ID)
	}

	hearts := 0
	for i := 0; i < opts.heartCount; i++ {
		user := users[rng.Intn(len(users))]
		if _, err := favorites.Toggle(ctx, user, storeIDs[rng.Intn(len(storeIDs))]); err != nil {
			log.Fatalf("お気に入りの投入に失敗しました: %v", err)
		}
		hearts++
	}

	log.Printf("Seed 完了: stores=%d users=%d heartToggles=%d", len(storeIDs), len(users), hearts)
	log.Printf("Mongo: %s / %s (env=%s)", mongoURI, dbName, opts.envName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "backend/env 内の env ファイル名 (例: local, staging)")
	flag.IntVar(&opts.storeCount, "stores", 20, "生成する店舗数")
	flag.IntVar(&opts.userCount, "users", 3, "お気に入りを付けるユーザー数")
	flag.IntVar(&opts.heartCount, "hearts", 15, "実行するお気に入りトグル回数")
	flag.BoolVar(&opts.withPhotos, "photos", true, "店舗ごとにサンプル画像を生成する")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.storeCount <= 0 {
		log.Fatal("stores は 1 以上を指定してください")
	}
	if opts.userCount <= 0 {
		opts.userCount = 1
	}
	if opts.heartCount < 0 {
		opts.heartCount = 0
	}
	return opts
}

// loadEnvFiles は存在する env ファイルだけを読み込む。既に設定済みの環境変数は上書きしない。
func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	files := lo.Filter([]string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	}, func(path string, _ int) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if len(files) == 0 {
		return fmt.Errorf("%s に env ファイルがありません", base)
	}
	return godotenv.Load(files...)
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func generateUsers(count int) []application.Requester {
	users := make([]application.Requester, 0, count)
	for i := 1; i <= count; i++ {
		users = append(users, application.Requester{
			ID:    fmt.Sprintf("seed-user-%d", i),
			Name:  fmt.Sprintf("Seed User %d", i),
			Email: fmt.Sprintf("seed-user-%d@example.com", i),
		})
	}
	return users
}

func randomFields(rng *rand.Rand) application.StoreFields {
	name := storeNames[rng.Intn(len(storeNames))]
	area := areas[rng.Intn(len(areas))]
	return application.StoreFields{
		Name:        name,
		Description: descriptions[rng.Intn(len(descriptions))],
		Tags:        pickUnique(rng, tagOptions, rng.Intn(4)),
		Location: &application.LocationInput{
			// 中心から最大でおよそ 5km ずらす
			Lng:     area.lng + (rng.Float64()-0.5)*0.1,
			Lat:     area.lat + (rng.Float64()-0.5)*0.1,
			Address: fmt.Sprintf("%s %d-%d-%d", area.name, rng.Intn(5)+1, rng.Intn(20)+1, rng.Intn(30)+1),
		},
	}
}

func samplePhoto(rng *rand.Rand) (*application.Upload, error) {
	fill := color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
	img := imaging.New(1200, 900, fill)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, err
	}
	return &application.Upload{Filename: "seed.jpg", MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

func pickUnique(rng *rand.Rand, source []string, count int) []string {
	if count <= 0 {
		return nil
	}
	picked := rng.Perm(len(source))[:min(count, len(source))]
	return lo.Map(picked, func(i int, _ int) string { return source[i] })
}

type area struct {
	name     string
	lng, lat float64
}

var (
	storeNames = []string{
		"Café Lumière", "Wired Coffee", "月ノ雫", "Bistro Kōhī", "Green Bowl", "Tea Room Hanami",
		"Noodle Works", "Bakery Soleil", "Crème Brûlée Lab", "Night Owl Bar",
	}

	areas = []area{
		{name: "東京都千代田区丸の内", lng: 139.7671, lat: 35.6812},
		{name: "東京都渋谷区道玄坂", lng: 139.7005, lat: 35.6595},
		{name: "大阪府大阪市北区梅田", lng: 135.4959, lat: 34.7025},
		{name: "福岡県福岡市中央区天神", lng: 130.3988, lat: 33.5902},
	}

	tagOptions = []string{"Wifi", "Open Late", "Family Friendly", "Vegetarian", "Licensed"}

	descriptions = []string{
		"自家焙煎のコーヒーと焼き菓子の店。電源席あり。",
		"駅から徒歩 3 分。ランチはセットメニューのみ。",
		"夜遅くまで営業しているので仕事帰りにも寄れる。",
		"Seasonal menu with locally sourced vegetables.",
	}
)
