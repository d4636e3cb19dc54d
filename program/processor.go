package program

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Processor 备忘录账户唯一的状态机：校验前置条件并执行状态转换
//
// 每次调用要么完整应用转换，要么不改动任何账户字节并返回错误
type Processor struct {
	config Config
	log    *zap.Logger
}

func NewProcessor(config Config) *Processor {
	config = config.withDefaults()
	return &Processor{
		config: config,
		log:    config.Logger,
	}
}

// Config 处理器生效的配置
func (p *Processor) Config() Config {
	return p.config
}

// ProcessInstruction 解码指令并按类型分派
//
// 账户顺序: [0] 备忘录账户(可写) [1] 调用者(签名) [2] 系统程序(可选)
func (p *Processor) ProcessInstruction(programID solana.PublicKey, accounts []*AccountInfo, data []byte) (err error) {
	inst, err := DecodeInstruction(data)
	if err != nil {
		p.log.Info("failed to decode instruction", zap.Int("data_len", len(data)))
		return err
	}
	p.log.Debug("Instruction: "+inst.Type().String(), zap.Int("accounts", len(accounts)))

	defer func() {
		if err != nil {
			p.printError(err)
		}
	}()

	switch inst := inst.(type) {
	case Create:
		return p.createMemo(programID, accounts, inst.Content)
	case Update:
		return p.updateMemo(programID, accounts, inst.Content)
	case Delete:
		return p.deleteMemo(programID, accounts)
	}
	return InvalidInstructionData
}

func (p *Processor) printError(err error) {
	var memoErr MemoError
	if errors.As(err, &memoErr) {
		p.log.Info(memoErr.Message(), zap.Uint32("code", memoErr.Code()))
		return
	}
	p.log.Info("Error: "+err.Error(), zap.Uint64("code", ToProgramError(err).Code()))
}

func (p *Processor) checkContent(content string) error {
	if len(content) > p.config.MaxMemoSize {
		return ExceedMaxMemoLen
	}
	return nil
}

// memoAccounts 取出备忘录账户与调用者，并做结构性校验
func memoAccounts(accounts []*AccountInfo) (memoAccount, user *AccountInfo, err error) {
	iter := accountIter{accounts: accounts}
	if memoAccount, err = iter.next(); err != nil {
		return nil, nil, err
	}
	if user, err = iter.next(); err != nil {
		return nil, nil, err
	}
	return memoAccount, user, nil
}

func checkAuthority(memoAccount, user *AccountInfo) error {
	if !user.IsSigner {
		return MissingRequiredSignature
	}
	if !memoAccount.IsWritable {
		return InvalidArgument
	}
	return nil
}

func (p *Processor) createMemo(programID solana.PublicKey, accounts []*AccountInfo, content string) error {
	memoAccount, user, err := memoAccounts(accounts)
	if err != nil {
		return err
	}
	if err := p.checkContent(content); err != nil {
		return err
	}
	if err := checkAuthority(memoAccount, user); err != nil {
		return err
	}

	address, _, err := FindMemoAddress(programID, user.Key)
	if err != nil || !address.Equals(memoAccount.Key) {
		return InvalidSeeds
	}
	if !memoAccount.Owner.Equals(programID) && !memoAccount.Owner.Equals(solana.SystemProgramID) {
		return IncorrectProgramId
	}
	if !IsEmpty(memoAccount.Data) {
		return AccountAlreadyInitialized
	}

	accountSize := MemoAccountSize(p.config.MaxMemoSize)
	if user.Lamports < p.config.Rent.MinimumBalance(accountSize) {
		return InsufficientBalance
	}

	memo := &Memo{
		Owner:     user.Key,
		Content:   content,
		Timestamp: p.config.Clock.UnixTimestamp(),
	}
	data := memoAccount.Data
	if len(data) == 0 {
		data = make([]byte, accountSize)
	}
	if err := writeMemo(data, memo); err != nil {
		return err
	}
	memoAccount.Data = data
	memoAccount.Owner = programID

	p.log.Debug("memo created",
		zap.Stringer("memo", memoAccount.Key),
		zap.Stringer("owner", user.Key),
		zap.Int("content_len", len(content)),
	)
	return nil
}

func (p *Processor) updateMemo(programID solana.PublicKey, accounts []*AccountInfo, content string) error {
	memoAccount, user, err := memoAccounts(accounts)
	if err != nil {
		return err
	}
	if err := p.checkContent(content); err != nil {
		return err
	}
	if err := checkAuthority(memoAccount, user); err != nil {
		return err
	}

	memo, err := loadMemo(programID, memoAccount)
	if err != nil {
		return err
	}
	if !memo.Owner.Equals(user.Key) {
		return OwnershipMismatch
	}

	now := p.config.Clock.UnixTimestamp()
	if now < memo.Timestamp {
		now = memo.Timestamp
	}
	memo.Content = content
	memo.Timestamp = now
	if err := writeMemo(memoAccount.Data, memo); err != nil {
		return err
	}

	p.log.Debug("memo updated",
		zap.Stringer("memo", memoAccount.Key),
		zap.Int("content_len", len(content)),
		zap.Int64("timestamp", now),
	)
	return nil
}

func (p *Processor) deleteMemo(programID solana.PublicKey, accounts []*AccountInfo) error {
	memoAccount, user, err := memoAccounts(accounts)
	if err != nil {
		return err
	}
	if err := checkAuthority(memoAccount, user); err != nil {
		return err
	}

	memo, err := loadMemo(programID, memoAccount)
	if err != nil {
		return err
	}
	if !memo.Owner.Equals(user.Key) {
		return OwnershipMismatch
	}

	clear(memoAccount.Data)

	p.log.Debug("memo deleted", zap.Stringer("memo", memoAccount.Key))
	return nil
}

// loadMemo 读取已占用的备忘录；空账户对 Update/Delete 而言视为所有权不匹配
func loadMemo(programID solana.PublicKey, memoAccount *AccountInfo) (*Memo, error) {
	if IsEmpty(memoAccount.Data) {
		return nil, OwnershipMismatch
	}
	if !memoAccount.Owner.Equals(programID) {
		return nil, IncorrectProgramId
	}
	memo, err := DecodeMemo(memoAccount.Data, 0)
	if err != nil {
		if tracer.Enabled() {
			zlog.Debug("undecodable memo account", zap.Stringer("memo", memoAccount.Key), zap.Error(err))
		}
		return nil, InvalidAccountData
	}
	return memo, nil
}

// writeMemo 先完整编码再一次性写入，剩余空间清零
func writeMemo(data []byte, memo *Memo) error {
	buf, err := memo.Encode()
	if err != nil {
		return InvalidAccountData
	}
	if len(data) < len(buf) {
		return AccountDataTooSmall
	}
	n := copy(data, buf)
	clear(data[n:])
	return nil
}
