package gotrue

func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient.Store(nil)
}
