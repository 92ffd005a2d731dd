package commands

import (
	"github.com/leoassist/leo/settings"
)

// settingsStore prefers the daemon's store so writes are seen by its
// watcher; standalone CLI use opens the default file.
func settingsStore() (*settings.Store, error) {
	if rt := GetRuntime(); rt != nil {
		return rt.Settings, nil
	}
	path, err := settings.DefaultPath()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(path), nil
}

func SettingsGetCommand() *CommandResponse {
	store, err := settingsStore()
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(store.Load())
}

type SettingsSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func SettingsSetCommand(req SettingsSetRequest) *CommandResponse {
	store, err := settingsStore()
	if err != nil {
		return NewErrorResponse(err)
	}
	updated, err := store.Set(req.Key, req.Value)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(updated)
}

type APIKeyStatus struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
}

func APIKeySetCommand(key string) *CommandResponse {
	if err := settings.SetAPIKey(key); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(APIKeyStatus{Configured: true, Source: string(settings.SourceKeyring)})
}

func APIKeyClearCommand() *CommandResponse {
	if err := settings.ClearAPIKey(); err != nil {
		return NewErrorResponse(err)
	}
	return APIKeyStatusCommand()
}

// APIKeyStatusCommand reports where the key comes from without
// revealing it.
func APIKeyStatusCommand() *CommandResponse {
	_, source, err := settings.APIKey()
	if err != nil && source == settings.SourceNone {
		return NewSuccessResponse(APIKeyStatus{Configured: false, Source: string(source)})
	}
	return NewSuccessResponse(APIKeyStatus{Configured: true, Source: string(source)})
}
