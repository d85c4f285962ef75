package main

import (
	"mapstory-desktop/internal/presenter"
)

// Present snapshots the scenes and shows the first one with the
// forward/back controls
func (a *App) Present() (presenter.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.presenter.Present(a.context(), a.repo.Scenes())
	if err != nil {
		return st, err
	}
	a.TrackEvent("story_presented", map[string]interface{}{
		"scenes": st.Total,
	})
	return st, nil
}

// Next shows the following scene; on the last scene it stays put
func (a *App) Next() (presenter.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presenter.Next(a.context())
}

// Previous shows the preceding scene; on the first scene it stays put
func (a *App) Previous() (presenter.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presenter.Previous(a.context())
}

// Edit leaves the presentation and gives the map back to the authoring form
func (a *App) Edit() presenter.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presenter.Edit()
}

// GetPresentationState reports the mode and, while presenting, the cursor
func (a *App) GetPresentationState() presenter.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presenter.State()
}
