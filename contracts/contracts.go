// Package contracts embeds the assembly sources deployed and invoked by the
// client.
package contracts

import (
	_ "embed"
)

// CalculatorLibraryPath is the library path scripts import the calculator
// contract under.
const CalculatorLibraryPath = "external_contract::calculator"

// BasicWalletLibraryPath is the library path of the wallet component
// installed into owner accounts.
const BasicWalletLibraryPath = "wallets::basic_wallet"

//go:embed masm/accounts/calculator.masm
var calculatorSource string

//go:embed masm/accounts/basic_wallet.masm
var basicWalletSource string

//go:embed masm/scripts/calculate.masm
var calculateScriptSource string

// Calculator returns the source of the calculator contract.
func Calculator() string {
	return calculatorSource
}

// CalculateScript returns the source of the script invoking the calculator.
func CalculateScript() string {
	return calculateScriptSource
}

// BasicWallet returns the source of the wallet component.
func BasicWallet() string {
	return basicWalletSource
}
