package storage

import (
	"fmt"
	"net/http"
)

// Asset is a static file held in memory for the lifetime of the process.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Assets are the branding files the page needs.
type Assets struct {
	Logo Asset
	Icon Asset
}

// LoadAssets reads the logo and icon once. A missing or empty file is an
// error so the server refuses to start without them.
func LoadAssets(store FileStorage, logo, icon string) (*Assets, error) {
	logoAsset, err := loadAsset(store, logo)
	if err != nil {
		return nil, err
	}
	iconAsset, err := loadAsset(store, icon)
	if err != nil {
		return nil, err
	}
	return &Assets{Logo: logoAsset, Icon: iconAsset}, nil
}

func loadAsset(store FileStorage, name string) (Asset, error) {
	if !store.Exists(name) {
		return Asset{}, fmt.Errorf("asset %s not found", name)
	}
	data, err := store.ReadAll(name)
	if err != nil {
		return Asset{}, fmt.Errorf("read asset %s: %w", name, err)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("asset %s is empty", name)
	}
	return Asset{
		Name:        name,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
