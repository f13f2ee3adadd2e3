package kite

import (
	"strings"
	"sync"
)

// instrumentMapper maps trading symbols to Kite instrument tokens
type instrumentMapper struct {
	symbolToToken map[string]int
	tokenToSymbol map[int]string
	loaded        bool
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]int),
		tokenToSymbol: make(map[int]string),
	}
}

// addMapping adds a symbol-token mapping
func (im *instrumentMapper) addMapping(symbol string, token int) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
	im.tokenToSymbol[token] = symbol
}

func (im *instrumentMapper) markLoaded() {
	im.mu.Lock()
	im.loaded = true
	im.mu.Unlock()
}

func (im *instrumentMapper) isLoaded() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.loaded
}

// getToken retrieves the token for a symbol
func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}

// getSymbol retrieves the symbol for a token
func (im *instrumentMapper) getSymbol(token int) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.tokenToSymbol[token]
}

// tradingSymbol strips the Yahoo exchange suffix so "RELIANCE.NS" resolves
// to the Kite symbol "RELIANCE".
func tradingSymbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	for _, suffix := range []string{".NS", ".BO"} {
		t = strings.TrimSuffix(t, suffix)
	}
	return t
}
