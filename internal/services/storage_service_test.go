package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StorageServiceTestSuite struct {
	suite.Suite
	minio   *MockMinioService
	service StorageService
	ctx     context.Context
}

func (suite *StorageServiceTestSuite) SetupTest() {
	suite.minio = &MockMinioService{}
	suite.minio.Test(suite.T())
	suite.service = NewStorageService(suite.minio, StorageConfig{
		Bucket:         "circuitweb",
		URLExpiry:      time.Hour,
		MaxUploadBytes: 10 << 20,
	}, zerolog.Nop())
	suite.ctx = context.Background()
}

func (suite *StorageServiceTestSuite) TearDownTest() {
	suite.minio.AssertExpectations(suite.T())
}

func TestStorageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StorageServiceTestSuite))
}

func upload(name, contentType, body, folder string) *models.UploadInput {
	return &models.UploadInput{
		Reader:      strings.NewReader(body),
		Size:        int64(len(body)),
		FileName:    name,
		ContentType: contentType,
		Folder:      folder,
	}
}

func (suite *StorageServiceTestSuite) TestUpload_Success() {
	in := upload("schematic.pdf", "application/pdf", "%PDF-1.4", "exports")

	suite.minio.On("PutObject", suite.ctx, "circuitweb", "exports/schematic.pdf", in.Reader, in.Size, "application/pdf").Return(nil)
	suite.minio.On("PresignedGetURL", suite.ctx, "circuitweb", "exports/schematic.pdf", time.Hour).
		Return("http://minio.local/circuitweb/exports/schematic.pdf?sig=1", nil)

	result, err := suite.service.Upload(suite.ctx, in)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "exports/schematic.pdf", result.FilePath)
	assert.Equal(suite.T(), "schematic.pdf", result.FileName)
	assert.Equal(suite.T(), int64(8), result.Size)
	assert.Contains(suite.T(), result.DownloadURL, "sig=1")
}

func (suite *StorageServiceTestSuite) TestUpload_FolderTraversalIsContained() {
	in := upload("../../etc/passwd", "text/plain", "x", "../../secret")

	suite.minio.On("PutObject", suite.ctx, "circuitweb", "secret/passwd", in.Reader, in.Size, "text/plain").Return(nil)
	suite.minio.On("PresignedGetURL", suite.ctx, "circuitweb", "secret/passwd", time.Hour).Return("http://u", nil)

	result, err := suite.service.Upload(suite.ctx, in)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "secret/passwd", result.FilePath)
}

func (suite *StorageServiceTestSuite) TestUpload_NoFile() {
	_, err := suite.service.Upload(suite.ctx, &models.UploadInput{})
	msg, ok := common.ValidationMessage(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "No file uploaded", msg)
}

func (suite *StorageServiceTestSuite) TestUpload_TooLarge() {
	in := upload("big.bin", "application/octet-stream", "x", "")
	in.Size = 11 << 20

	_, err := suite.service.Upload(suite.ctx, in)
	msg, ok := common.ValidationMessage(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "File size exceeds 10MB limit", msg)
}

func (suite *StorageServiceTestSuite) TestUpload_StoreFailure() {
	in := upload("a.txt", "text/plain", "abc", "")
	suite.minio.On("PutObject", suite.ctx, "circuitweb", "a.txt", in.Reader, in.Size, "text/plain").Return(errors.New("connection refused"))

	_, err := suite.service.Upload(suite.ctx, in)
	assert.Error(suite.T(), err)
	_, ok := common.ValidationMessage(err)
	assert.False(suite.T(), ok)
}

func (suite *StorageServiceTestSuite) TestUploadCircuitImage_Success() {
	in := upload("board.png", "image/png", "\x89PNG", "")

	suite.minio.On("PutObject", suite.ctx, "circuitweb", "circuits/c1/board.png", in.Reader, in.Size, "image/png").Return(nil)
	suite.minio.On("PresignedGetURL", suite.ctx, "circuitweb", "circuits/c1/board.png", time.Hour).Return("http://img", nil)

	result, err := suite.service.UploadCircuitImage(suite.ctx, "c1", in)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "circuits/c1/board.png", result.FilePath)
}

func (suite *StorageServiceTestSuite) TestUploadCircuitImage_RejectsNonImage() {
	_, err := suite.service.UploadCircuitImage(suite.ctx, "c1", upload("notes.txt", "text/plain", "x", ""))
	msg, ok := common.ValidationMessage(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "Only image files are allowed (JPEG, PNG, GIF, WebP)", msg)
}

func (suite *StorageServiceTestSuite) TestUploadCircuitImage_MissingCircuitID() {
	_, err := suite.service.UploadCircuitImage(suite.ctx, " ", upload("a.png", "image/png", "x", ""))
	msg, ok := common.ValidationMessage(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "Circuit ID is required", msg)
}

func (suite *StorageServiceTestSuite) TestFileURL_PublicBase() {
	service := NewStorageService(suite.minio, StorageConfig{Bucket: "circuitweb", PublicURL: "https://cdn.example.com/"}, zerolog.Nop())

	url, err := service.FileURL(suite.ctx, "/circuits/c1/a.png")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://cdn.example.com/circuitweb/circuits/c1/a.png", url)
}

func (suite *StorageServiceTestSuite) TestFileURL_EmptyPath() {
	_, err := suite.service.FileURL(suite.ctx, "")
	msg, ok := common.ValidationMessage(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "File path is required", msg)
}

func (suite *StorageServiceTestSuite) TestDelete_Existing() {
	suite.minio.On("StatObject", suite.ctx, "circuitweb", "exports/a.pdf").Return(&ObjectInfo{Key: "exports/a.pdf"}, nil)
	suite.minio.On("RemoveObject", suite.ctx, "circuitweb", "exports/a.pdf").Return(nil)

	deleted, err := suite.service.Delete(suite.ctx, "exports/a.pdf")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), deleted)
}

func (suite *StorageServiceTestSuite) TestDelete_Missing() {
	suite.minio.On("StatObject", suite.ctx, "circuitweb", "nope").Return(nil, common.NotFound("object", "nope"))

	deleted, err := suite.service.Delete(suite.ctx, "nope")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), deleted)
	suite.minio.AssertNotCalled(suite.T(), "RemoveObject", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StorageServiceTestSuite) TestList() {
	modified := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	suite.minio.On("ListObjects", suite.ctx, "circuitweb", "exports/").Return([]ObjectInfo{
		{Key: "exports/a.png", Size: 12, LastModified: modified},
		{Key: "exports/b.pdf", Size: 30, ContentType: "application/pdf", LastModified: modified},
	}, nil)
	suite.minio.On("PresignedGetURL", suite.ctx, "circuitweb", mock.AnythingOfType("string"), time.Hour).Return("http://signed", nil)

	files, err := suite.service.List(suite.ctx, "exports")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), files, 2)
	assert.Equal(suite.T(), "a.png", files[0].Name)
	assert.Equal(suite.T(), "image/png", files[0].Type)
	assert.Equal(suite.T(), "application/pdf", files[1].Type)
	assert.Equal(suite.T(), modified, files[1].CreatedAt)
}

func (suite *StorageServiceTestSuite) TestList_Empty() {
	suite.minio.On("ListObjects", suite.ctx, "circuitweb", "").Return(nil, nil)

	files, err := suite.service.List(suite.ctx, "")
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), files)
	assert.Empty(suite.T(), files)
}

func TestCleanFolder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"exports", "exports"},
		{"/exports/2024/", "exports/2024"},
		{"../../x", "x"},
		{`a\b`, "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanFolder(tt.in))
		})
	}
}

func TestSizeLimitMessage(t *testing.T) {
	assert.Equal(t, "File size exceeds 32MB limit", SizeLimitMessage(32<<20))
}
