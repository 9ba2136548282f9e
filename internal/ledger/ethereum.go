package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"credverify/internal/platform/tracer"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
)

// credentialABI is the read surface of the soulbound credential contract.
const credentialABI = `[{
  "inputs": [{"internalType": "uint256", "name": "_tokenId", "type": "uint256"}],
  "name": "getCredential",
  "outputs": [
    {"internalType": "address", "name": "credOwner", "type": "address"},
    {"internalType": "string", "name": "metadataHash", "type": "string"},
    {"internalType": "uint256", "name": "verificationScore", "type": "uint256"},
    {"internalType": "string[]", "name": "skillTags", "type": "string[]"},
    {"internalType": "uint256", "name": "timestamp", "type": "uint256"},
    {"internalType": "address", "name": "issuer", "type": "address"},
    {"internalType": "bool", "name": "isActive", "type": "bool"}
  ],
  "stateMutability": "view",
  "type": "function"
}]`

const methodGetCredential = "getCredential"

// ContractCaller is satisfied by *ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EthereumReader reads tokens from the credential contract over JSON-RPC.
type EthereumReader struct {
	caller   ContractCaller
	contract common.Address
	abi      abi.ABI
	tracer   tracer.Tracer
}

// EthereumOption configures an EthereumReader.
type EthereumOption func(*EthereumReader)

func WithTracer(t tracer.Tracer) EthereumOption {
	return func(r *EthereumReader) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return client, nil
}

func NewEthereumReader(caller ContractCaller, contract common.Address, opts ...EthereumOption) (*EthereumReader, error) {
	parsed, err := abi.JSON(strings.NewReader(credentialABI))
	if err != nil {
		return nil, fmt.Errorf("parse credential abi: %w", err)
	}
	r := &EthereumReader{caller: caller, contract: contract, abi: parsed, tracer: tracer.NewNoop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *EthereumReader) Get(ctx context.Context, tokenID string) (_ *Record, err error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanLedgerGet,
		tracer.String(tracer.AttrProvider, "ethereum"),
		tracer.String(tracer.AttrTokenID, tokenID),
	)
	defer func() { span.End(err) }()

	n, ok := new(big.Int).SetString(tokenID, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: token id %q is not a uint256", sentinel.ErrInvalidInput, tokenID)
	}
	data, err := r.abi.Pack(methodGetCredential, n)
	if err != nil {
		return nil, fmt.Errorf("%w: pack getCredential: %v", sentinel.ErrInvalidInput, err)
	}

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		if strings.Contains(err.Error(), "execution reverted") {
			return nil, fmt.Errorf("token %s: %w", tokenID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: call getCredential: %v", sentinel.ErrUnavailable, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("token %s: %w", tokenID, sentinel.ErrNotFound)
	}

	values, err := r.abi.Unpack(methodGetCredential, out)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack getCredential: %v", sentinel.ErrUnavailable, err)
	}
	return decodeCredential(tokenID, values)
}

func decodeCredential(tokenID string, values []any) (*Record, error) {
	if len(values) != 7 {
		return nil, fmt.Errorf("%w: getCredential returned %d values", sentinel.ErrUnavailable, len(values))
	}
	owner, ok1 := values[0].(common.Address)
	hash, ok2 := values[1].(string)
	score, ok3 := values[2].(*big.Int)
	tags, ok4 := values[3].([]string)
	ts, ok5 := values[4].(*big.Int)
	issuer, ok6 := values[5].(common.Address)
	active, ok7 := values[6].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return nil, fmt.Errorf("%w: unexpected getCredential types", sentinel.ErrUnavailable)
	}
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("token %s: %w", tokenID, sentinel.ErrNotFound)
	}

	return &Record{
		TokenID:      tokenID,
		Owner:        id.SubjectID(strings.ToLower(owner.Hex())),
		MetadataHash: hash,
		Score:        int(score.Int64()),
		SkillTags:    tags,
		Issuer:       strings.ToLower(issuer.Hex()),
		MintedAt:     time.Unix(ts.Int64(), 0).UTC(),
		Active:       active,
	}, nil
}

var _ Reader = (*EthereumReader)(nil)
