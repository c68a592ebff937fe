package util

import "golang.org/x/crypto/bcrypt"

// custo 12: hashes antigos continuam verificáveis se o custo mudar
const passwordHashCost = 12

// HashPassword gera o hash bcrypt de uma senha em texto claro.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compara a senha informada com o hash armazenado.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
