/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-04 10:40:12
 * @LastEditTime: 2025-08-24 17:31:28
 * @LastEditors: 安知鱼
 */
package photosync

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/anzhiyu-c/photasm/pkg/constant"
	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

// ---- 测试替身 ----

type memContainer struct {
	exif map[string]metadata.Value
	iptc map[string]metadata.Value

	flushErr   error
	flushCount int
}

func newMemContainer() *memContainer {
	return &memContainer{
		exif: make(map[string]metadata.Value),
		iptc: make(map[string]metadata.Value),
	}
}

func (c *memContainer) bucket(key string) map[string]metadata.Value {
	if strings.HasPrefix(key, "Exif.") {
		return c.exif
	}
	return c.iptc
}

func (c *memContainer) Get(key string) metadata.Value {
	if v, ok := c.bucket(key)[key]; ok {
		return v
	}
	return metadata.Absent
}

func (c *memContainer) Set(key string, value metadata.Value) {
	c.bucket(key)[key] = value
}

func (c *memContainer) Delete(key string) error {
	delete(c.bucket(key), key)
	return nil
}

func sortedKeys(m map[string]metadata.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *memContainer) ExifKeys() []string { return sortedKeys(c.exif) }
func (c *memContainer) IptcKeys() []string { return sortedKeys(c.iptc) }

func (c *memContainer) Flush() error {
	c.flushCount++
	return c.flushErr
}

func (c *memContainer) Thumbnail() ([]byte, error) { return nil, constant.ErrNoThumbnail }
func (c *memContainer) SetThumbnail(data []byte)   {}

var _ metadata.Container = (*memContainer)(nil)

type fakeCodec struct {
	container metadata.Container
	openErr   error
	openCount int
}

func (c *fakeCodec) Open(path string) (metadata.Container, error) {
	c.openCount++
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.container, nil
}

type fakePhotoRepo struct {
	saveCount int
	saveErr   error
	lastSaved *model.Photo
}

func (r *fakePhotoRepo) FindByID(ctx context.Context, id uint) (*model.Photo, error) {
	return nil, constant.ErrPhotoNotFound
}

func (r *fakePhotoRepo) Save(ctx context.Context, photo *model.Photo) error {
	r.saveCount++
	r.lastSaved = photo
	return r.saveErr
}

type fakeTagRepo struct {
	nextID uint
	tags   map[string]*model.PhotoTag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*model.PhotoTag)}
}

// FindOrCreate 按名字不区分大小写查找或创建，模拟真实仓储的行为
func (r *fakeTagRepo) FindOrCreate(ctx context.Context, names []string) ([]*model.PhotoTag, error) {
	result := make([]*model.PhotoTag, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(name)
		tag, ok := r.tags[lower]
		if !ok {
			r.nextID++
			tag = &model.PhotoTag{ID: r.nextID, Name: name}
			r.tags[lower] = tag
		}
		result = append(result, tag)
	}
	return result, nil
}

func testPhoto() *model.Photo {
	taken := time.Date(2007, 9, 28, 3, 0, 0, 0, time.UTC)
	return &model.Photo{
		ID:                  1,
		FilePath:            "/photos/2007/09/28/test.jpg",
		Description:         "Test file",
		Artist:              "Adam",
		Country:             "USA",
		ProvinceState:       "Virginia",
		City:                "Blacksburg",
		Location:            "Dreamland",
		TimeCreated:         &taken,
		Keywords:            []*model.PhotoTag{{ID: 1, Name: "test"}, {ID: 2, Name: "photo"}},
		ImageWidth:          640,
		ImageHeight:         480,
		IsJPEG:              true,
		MetadataSyncEnabled: true,
	}
}

// ---- SyncToFile ----

func TestSyncToFile(t *testing.T) {
	t.Run("首次同步写入全部字段并落盘", func(t *testing.T) {
		c := newMemContainer()
		codec := &fakeCodec{container: c}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := testPhoto()

		if !svc.SyncToFile(context.Background(), photo) {
			t.Fatal("首次同步应当报告修改")
		}
		if c.flushCount != 1 {
			t.Errorf("flushCount = %d, want 1", c.flushCount)
		}
		if got := c.Get(metadata.KeyExifImageDescription).Text(); got != "Test file" {
			t.Errorf("描述 = %q, want %q", got, "Test file")
		}
		if got := c.Get(metadata.KeyExifArtist).Text(); got != "Adam" {
			t.Errorf("作者 = %q, want %q", got, "Adam")
		}
		if got := c.Get(metadata.KeyIptcCountryName).Text(); got != "USA" {
			t.Errorf("国家 = %q, want %q", got, "USA")
		}
		if got := c.Get(metadata.KeyExifDateTimeOriginal).Time(); !got.Equal(*photo.TimeCreated) {
			t.Errorf("拍摄时间 = %v, want %v", got, *photo.TimeCreated)
		}
		if got := c.Get(metadata.KeyIptcKeywords).List(); len(got) != 2 {
			t.Errorf("关键字 = %v, want 2 个", got)
		}
		// JPEG 的尺寸写入 Photo.PixelXDimension / PixelYDimension
		if got := c.Get(metadata.KeyExifPixelXDimension).Integer(); got != 640 {
			t.Errorf("宽度 = %d, want 640", got)
		}
		if got := c.Get(metadata.KeyExifPixelYDimension).Integer(); got != 480 {
			t.Errorf("高度 = %d, want 480", got)
		}
	})

	t.Run("连续两次同步第二次是无操作", func(t *testing.T) {
		c := newMemContainer()
		codec := &fakeCodec{container: c}
		svc := NewService(codec, &fakePhotoRepo{}, newFakeTagRepo())
		photo := testPhoto()

		if !svc.SyncToFile(context.Background(), photo) {
			t.Fatal("首次同步应当报告修改")
		}
		if svc.SyncToFile(context.Background(), photo) {
			t.Error("第二次同步不应报告修改")
		}
		if c.flushCount != 1 {
			t.Errorf("第二次同步不应落盘，flushCount = %d, want 1", c.flushCount)
		}
	})

	t.Run("同步开关关闭时直接返回", func(t *testing.T) {
		codec := &fakeCodec{container: newMemContainer()}
		svc := NewService(codec, &fakePhotoRepo{}, newFakeTagRepo())
		photo := testPhoto()
		photo.MetadataSyncEnabled = false

		if svc.SyncToFile(context.Background(), photo) {
			t.Error("开关关闭时不应报告修改")
		}
		if codec.openCount != 0 {
			t.Errorf("开关关闭时不应打开文件，openCount = %d", codec.openCount)
		}
	})

	t.Run("读取失败触发熔断且不再重试", func(t *testing.T) {
		codec := &fakeCodec{openErr: constant.ErrMetadataRead}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := testPhoto()

		if svc.SyncToFile(context.Background(), photo) {
			t.Error("读取失败时不应报告修改")
		}
		if photo.MetadataSyncEnabled {
			t.Error("读取失败后同步开关应当关闭")
		}
		if photoRepo.saveCount != 1 {
			t.Errorf("熔断标志应当被持久化，saveCount = %d, want 1", photoRepo.saveCount)
		}

		// 第二次调用是廉价的无操作，不再尝试 I/O
		if svc.SyncToFile(context.Background(), photo) {
			t.Error("熔断后不应报告修改")
		}
		if codec.openCount != 1 {
			t.Errorf("熔断后不应再打开文件，openCount = %d, want 1", codec.openCount)
		}
	})

	t.Run("落盘失败同样触发熔断", func(t *testing.T) {
		c := newMemContainer()
		c.flushErr = errors.New("write not supported for this format")
		codec := &fakeCodec{container: c}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := testPhoto()

		if svc.SyncToFile(context.Background(), photo) {
			t.Error("落盘失败时对外应报告失败")
		}
		if photo.MetadataSyncEnabled {
			t.Error("落盘失败后同步开关应当关闭")
		}
	})
}

// ---- SyncFromFile ----

func populatedContainer() *memContainer {
	c := newMemContainer()
	c.Set(metadata.KeyExifImageDescription, metadata.Text("Test file"))
	c.Set(metadata.KeyExifArtist, metadata.Text("Adam"))
	c.Set(metadata.KeyIptcCountryName, metadata.Text("USA"))
	c.Set(metadata.KeyIptcProvinceState, metadata.Text("Virginia"))
	c.Set(metadata.KeyIptcCity, metadata.Text("Blacksburg"))
	c.Set(metadata.KeyIptcSubLocation, metadata.Text("Dreamland"))
	c.Set(metadata.KeyExifDateTimeOriginal,
		metadata.DateTime(time.Date(2007, 9, 28, 3, 0, 0, 0, time.UTC)))
	c.Set(metadata.KeyIptcKeywords, metadata.TextList([]string{"test", "photo"}))
	c.Set(metadata.KeyExifPixelXDimension, metadata.Integer(640))
	c.Set(metadata.KeyExifPixelYDimension, metadata.Integer(480))
	return c
}

func TestSyncFromFile(t *testing.T) {
	t.Run("从文件播种全部字段", func(t *testing.T) {
		codec := &fakeCodec{container: populatedContainer()}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := &model.Photo{
			ID:                  1,
			FilePath:            "/photos/test.jpg",
			IsJPEG:              true,
			MetadataSyncEnabled: true,
		}

		if !svc.SyncFromFile(context.Background(), photo, true) {
			t.Fatal("字段为空时从文件播种应当报告修改")
		}
		if photo.Description != "Test file" {
			t.Errorf("描述 = %q, want %q", photo.Description, "Test file")
		}
		if photo.Artist != "Adam" {
			t.Errorf("作者 = %q, want %q", photo.Artist, "Adam")
		}
		if photo.Country != "USA" || photo.ProvinceState != "Virginia" ||
			photo.City != "Blacksburg" || photo.Location != "Dreamland" {
			t.Errorf("地理字段 = %q/%q/%q/%q", photo.Country, photo.ProvinceState, photo.City, photo.Location)
		}
		want := time.Date(2007, 9, 28, 3, 0, 0, 0, time.UTC)
		if photo.TimeCreated == nil || !photo.TimeCreated.Equal(want) {
			t.Errorf("拍摄时间 = %v, want %v", photo.TimeCreated, want)
		}
		if names := photo.KeywordNames(); len(names) != 2 || names[0] != "test" || names[1] != "photo" {
			t.Errorf("关键字 = %v", names)
		}
		if photo.ImageWidth != 640 || photo.ImageHeight != 480 {
			t.Errorf("尺寸 = %dx%d, want 640x480", photo.ImageWidth, photo.ImageHeight)
		}
		if photoRepo.saveCount != 1 {
			t.Errorf("commit 为 true 时应当持久化，saveCount = %d", photoRepo.saveCount)
		}

		// 第二次同步没有任何修改
		if svc.SyncFromFile(context.Background(), photo, true) {
			t.Error("第二次同步不应报告修改")
		}
	})

	t.Run("commit为false时不持久化", func(t *testing.T) {
		codec := &fakeCodec{container: populatedContainer()}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := &model.Photo{ID: 1, FilePath: "/photos/test.jpg", IsJPEG: true, MetadataSyncEnabled: true}

		if !svc.SyncFromFile(context.Background(), photo, false) {
			t.Fatal("应当报告修改")
		}
		if photoRepo.saveCount != 0 {
			t.Errorf("commit 为 false 时不应持久化，saveCount = %d", photoRepo.saveCount)
		}
		if photo.Description != "Test file" {
			t.Error("即使不持久化，内存中的字段也应当更新")
		}
	})

	t.Run("关键字读回经过不区分大小写的查找或创建", func(t *testing.T) {
		c := newMemContainer()
		c.Set(metadata.KeyIptcKeywords, metadata.TextList([]string{"Test", "photo"}))
		codec := &fakeCodec{container: c}
		tagRepo := newFakeTagRepo()
		// 预先存在一个小写的同名标签
		tagRepo.tags["test"] = &model.PhotoTag{ID: 42, Name: "test"}
		svc := NewService(codec, &fakePhotoRepo{}, tagRepo)
		photo := &model.Photo{ID: 1, FilePath: "/photos/test.jpg", MetadataSyncEnabled: true}

		if !svc.SyncFromFile(context.Background(), photo, false) {
			t.Fatal("应当报告修改")
		}
		if len(photo.Keywords) != 2 {
			t.Fatalf("关键字数量 = %d, want 2", len(photo.Keywords))
		}
		// "Test" 命中已有的 "test" 标签而不是新建
		if photo.Keywords[0].ID != 42 {
			t.Errorf("关键字应当复用已有标签，ID = %d, want 42", photo.Keywords[0].ID)
		}
	})

	t.Run("文件没有关键字时不清空记录已有的", func(t *testing.T) {
		c := newMemContainer()
		codec := &fakeCodec{container: c}
		svc := NewService(codec, &fakePhotoRepo{}, newFakeTagRepo())
		photo := &model.Photo{
			ID:                  1,
			FilePath:            "/photos/test.jpg",
			Keywords:            []*model.PhotoTag{{ID: 1, Name: "test"}, {ID: 2, Name: "photo"}},
			MetadataSyncEnabled: true,
		}

		if !svc.SyncFromFile(context.Background(), photo, false) {
			t.Fatal("关键字不一致时应当报告修改")
		}
		if len(photo.Keywords) != 2 {
			t.Fatalf("记录的关键字被清空了: 数量 = %d, want 2", len(photo.Keywords))
		}
	})

	t.Run("文件比记录多出的值覆盖记录", func(t *testing.T) {
		c := populatedContainer()
		c.Set(metadata.KeyExifImageDescription, metadata.Text("Image for testing"))
		codec := &fakeCodec{container: c}
		svc := NewService(codec, &fakePhotoRepo{}, newFakeTagRepo())
		photo := testPhoto()

		if !svc.SyncFromFile(context.Background(), photo, false) {
			t.Fatal("描述不一致时应当报告修改")
		}
		if photo.Description != "Image for testing" {
			t.Errorf("描述 = %q, want %q", photo.Description, "Image for testing")
		}
	})

	t.Run("读取失败触发熔断", func(t *testing.T) {
		codec := &fakeCodec{openErr: constant.ErrMetadataRead}
		photoRepo := &fakePhotoRepo{}
		svc := NewService(codec, photoRepo, newFakeTagRepo())
		photo := testPhoto()

		if svc.SyncFromFile(context.Background(), photo, true) {
			t.Error("读取失败时不应报告修改")
		}
		if photo.MetadataSyncEnabled {
			t.Error("读取失败后同步开关应当关闭")
		}
		if codec.openCount != 1 {
			t.Errorf("openCount = %d, want 1", codec.openCount)
		}
	})
}

// ---- 双向往返 ----

func TestSyncRoundTrip(t *testing.T) {
	c := newMemContainer()
	codec := &fakeCodec{container: c}
	tagRepo := newFakeTagRepo()
	svc := NewService(codec, &fakePhotoRepo{}, tagRepo)

	source := testPhoto()
	if !svc.SyncToFile(context.Background(), source) {
		t.Fatal("写入应当报告修改")
	}

	// 用同一个文件播种一条全新的记录
	fresh := &model.Photo{
		ID:                  2,
		FilePath:            source.FilePath,
		IsJPEG:              true,
		MetadataSyncEnabled: true,
	}
	if !svc.SyncFromFile(context.Background(), fresh, false) {
		t.Fatal("播种应当报告修改")
	}

	if fresh.Description != source.Description || fresh.Artist != source.Artist ||
		fresh.Country != source.Country || fresh.ProvinceState != source.ProvinceState ||
		fresh.City != source.City || fresh.Location != source.Location {
		t.Error("文本字段往返后不一致")
	}
	if fresh.TimeCreated == nil || !fresh.TimeCreated.Equal(*source.TimeCreated) {
		t.Errorf("拍摄时间往返后 = %v, want %v", fresh.TimeCreated, *source.TimeCreated)
	}
	if fresh.ImageWidth != source.ImageWidth || fresh.ImageHeight != source.ImageHeight {
		t.Error("尺寸往返后不一致")
	}
	gotNames := fresh.KeywordNames()
	wantNames := source.KeywordNames()
	if len(gotNames) != len(wantNames) {
		t.Fatalf("关键字往返后 = %v, want %v", gotNames, wantNames)
	}
}
