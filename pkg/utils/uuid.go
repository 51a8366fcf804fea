package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID gera identificadores curtos para entidades do funil
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, 10)
}

// GenerateRecordID gera identificadores para registros de histórico, mais numerosos que as entidades
func GenerateRecordID() (string, error) {
	return gonanoid.Generate(characters, 16)
}
