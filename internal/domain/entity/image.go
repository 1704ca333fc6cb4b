package entity

import (
	"path/filepath"
	"strings"
)

// ImageExtensions перечисляет расширения, которые считаются изображениями (без точки, в нижнем регистре).
var ImageExtensions = []string{"jpg", "jpeg", "png", "bmp", "tiff", "gif"}

// IsImageFile проверяет расширение файла: целиком строчными или целиком заглавными.
func IsImageFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range ImageExtensions {
		if ext == e || ext == strings.ToUpper(e) {
			return true
		}
	}
	return false
}
