package config

// ConfigCallback distributes the built configuration to packages that
// initialize before the config file is parsed (e.g. the logger).
type ConfigCallback[T any] struct {
	callbacks []func(T)
	config    *T
}

func (cc *ConfigCallback[T]) AddCallback(f func(T)) {
	cc.callbacks = append(cc.callbacks, f)
	if cc.config != nil {
		f(*cc.config)
	}
}

func (cc *ConfigCallback[T]) Call(config T) {
	cc.config = &config
	for _, f := range cc.callbacks {
		f(config)
	}
}
