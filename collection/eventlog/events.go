// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package eventlog

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minted is raised once per issued unit. Its amount is the size of the whole batch, so every
// log of one batch repeats the same amount.
const collectionEventsJSON = `[
	{"type":"event","name":"Minted","inputs":[
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Dropped","inputs":[
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"event","name":"Burned","inputs":[
		{"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"event","name":"CostSet","inputs":[
		{"name":"cost","type":"uint256","indexed":false}]},
	{"type":"event","name":"TokenURISet","inputs":[
		{"name":"uri","type":"string","indexed":false}]},
	{"type":"event","name":"MaxSupplyPerAddressUpdated","inputs":[
		{"name":"maxSupplyPerAddress","type":"uint256","indexed":false}]},
	{"type":"event","name":"PausedContract","inputs":[
		{"name":"paused","type":"bool","indexed":false}]},
	{"type":"event","name":"Withdrawn","inputs":[
		{"name":"to","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Transfer","inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"event","name":"OwnershipTransferred","inputs":[
		{"name":"previousOwner","type":"address","indexed":true},
		{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"Initialized","inputs":[
		{"name":"version","type":"uint64","indexed":false}]}
]`

// CollectionABI describes every notification a collection can write.
var CollectionABI = MustParse(collectionEventsJSON)

func MustParse(definition string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return &parsed
}
