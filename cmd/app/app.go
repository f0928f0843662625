/*
 * @Description: 命令行入口。装配编解码器、仓储与同步服务，
 *               提供 inspect / pull / push / thumb 四个子命令。
 * @Author: 安知鱼
 * @Date: 2025-08-12 09:30:17
 * @LastEditTime: 2025-08-29 10:55:41
 * @LastEditors: 安知鱼
 */
package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anzhiyu-c/photasm/internal/infra/imagemeta"
	"github.com/anzhiyu-c/photasm/internal/infra/persistence/memory"
	"github.com/anzhiyu-c/photasm/pkg/config"
	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/domain/repository"
	"github.com/anzhiyu-c/photasm/pkg/service/photosync"
	"github.com/anzhiyu-c/photasm/pkg/service/thumbnail"
)

const usage = `用法: photasm <命令> [参数] <图片文件>

命令:
  inspect   打印文件里的全部 Exif / IPTC 元数据
  pull      从文件元数据播种一条照片记录并打印
  push      把命令行给出的字段写回文件元数据
  thumb     生成缩略图（JPEG 优先复用内嵌缩略图）
`

// Run 解析子命令并执行。
func Run() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	codec := imagemeta.NewCodec(cfg.GetBool(config.KeyMetadataBruteForce))
	photoRepo := memory.NewPhotoRepository()
	tagRepo := memory.NewPhotoTagRepository()
	syncSvc := photosync.NewService(codec, photoRepo, tagRepo)
	thumbSvc := thumbnail.NewService(
		codec, photoRepo,
		cfg.GetString(config.KeyThumbnailCachePath),
		cfg.GetInt(config.KeyThumbnailPixelBudget),
		cfg.GetInt(config.KeyThumbnailJPEGQuality),
	)

	ctx := context.Background()
	switch args[0] {
	case "inspect":
		err = runInspect(codec, args[1:])
	case "pull":
		err = runPull(ctx, syncSvc, photoRepo, args[1:])
	case "push":
		err = runPush(ctx, syncSvc, photoRepo, tagRepo, args[1:])
	case "thumb":
		err = runThumb(ctx, syncSvc, thumbSvc, photoRepo, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("命令执行失败: %v", err)
	}
}

// classify 解码图片头，返回是否为 JPEG 和像素尺寸。
// 格式按真实内容判断，不信任扩展名。
func classify(path string) (isJPEG bool, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return false, 0, 0, fmt.Errorf("无法识别的图片格式: %w", err)
	}
	return format == "jpeg", cfg.Width, cfg.Height, nil
}

func seedPhoto(ctx context.Context, photoRepo repository.PhotoRepository, path string) (*model.Photo, error) {
	isJPEG, width, height, err := classify(path)
	if err != nil {
		return nil, err
	}
	photo := &model.Photo{
		FilePath:            path,
		ImageWidth:          width,
		ImageHeight:         height,
		IsJPEG:              isJPEG,
		MetadataSyncEnabled: true,
	}
	if err := photoRepo.Save(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func printPhoto(photo *model.Photo) error {
	out, err := json.MarshalIndent(photo, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runInspect(codec *imagemeta.Codec, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("inspect 需要一个文件参数")
	}
	c, err := codec.Open(args[0])
	if err != nil {
		return err
	}
	for _, key := range c.ExifKeys() {
		fmt.Printf("%-40s %s\n", key, c.Get(key))
	}
	for _, key := range c.IptcKeys() {
		fmt.Printf("%-40s %s\n", key, c.Get(key))
	}
	return nil
}

func runPull(ctx context.Context, syncSvc *photosync.Service, photoRepo repository.PhotoRepository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("pull 需要一个文件参数")
	}
	photo, err := seedPhoto(ctx, photoRepo, args[0])
	if err != nil {
		return err
	}
	if syncSvc.SyncFromFile(ctx, photo, true) {
		log.Printf("[App] 记录已从文件元数据更新。")
	}
	return printPhoto(photo)
}

func runPush(ctx context.Context, syncSvc *photosync.Service, photoRepo repository.PhotoRepository, tagRepo repository.PhotoTagRepository, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	description := fs.String("description", "", "照片描述")
	artist := fs.String("artist", "", "作者")
	country := fs.String("country", "", "国家")
	province := fs.String("province", "", "省份")
	city := fs.String("city", "", "城市")
	location := fs.String("location", "", "具体地点")
	taken := fs.String("taken", "", "拍摄时间，格式 2006-01-02 15:04:05")
	keywords := fs.String("keywords", "", "逗号分隔的关键字列表")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("push 需要一个文件参数")
	}

	photo, err := seedPhoto(ctx, photoRepo, fs.Arg(0))
	if err != nil {
		return err
	}
	photo.Description = *description
	photo.Artist = *artist
	photo.Country = *country
	photo.ProvinceState = *province
	photo.City = *city
	photo.Location = *location
	if *taken != "" {
		t, err := time.Parse("2006-01-02 15:04:05", *taken)
		if err != nil {
			return fmt.Errorf("拍摄时间格式不对: %w", err)
		}
		photo.TimeCreated = &t
	}
	if *keywords != "" {
		var names []string
		for _, name := range strings.Split(*keywords, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		// 关键字必须经过标签仓储的查找或创建，标签身份归仓储层管
		tags, err := tagRepo.FindOrCreate(ctx, names)
		if err != nil {
			return fmt.Errorf("关键字标签入库失败: %w", err)
		}
		photo.Keywords = tags
	}
	if err := photoRepo.Save(ctx, photo); err != nil {
		return err
	}

	if syncSvc.SyncToFile(ctx, photo) {
		log.Printf("[App] 文件元数据已更新。")
	} else {
		log.Printf("[App] 文件元数据已经是最新，无需写入。")
	}
	return nil
}

func runThumb(ctx context.Context, syncSvc *photosync.Service, thumbSvc *thumbnail.Service, photoRepo repository.PhotoRepository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("thumb 需要一个文件参数")
	}
	photo, err := seedPhoto(ctx, photoRepo, args[0])
	if err != nil {
		return err
	}
	// 拍摄时间决定缩略图的缓存子目录，先从文件播种
	syncSvc.SyncFromFile(ctx, photo, true)
	if err := thumbSvc.CreateThumbnail(ctx, photo); err != nil {
		return err
	}
	fmt.Println(photo.ThumbnailPath)
	return nil
}
