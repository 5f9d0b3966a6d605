package auth

// Authorize はリソースの所有者と操作主体のニックネームを突き合わせます。
// 完全一致以外は常に拒否で、管理者などの例外はありません。
func Authorize(ownerNickname, actingNickname string) error {
	if ownerNickname != actingNickname {
		return ErrPermissionDenied
	}
	return nil
}
