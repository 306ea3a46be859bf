package models

// All returns every model in migration order (parents first)
func All() []interface{} {
	return []interface{}{
		&Case{},
		&Email{},
		&TextMessage{},
		&PhoneCall{},
		&ReasonChain{},
		&AITask{},
		&File{},
	}
}
