package utils

import "testing"

func TestGenerateRandomJobSet(t *testing.T) {
	jobSet := GenerateRandomJobSet(20, 4)

	if len(jobSet.Jobs) != 20 {
		t.Fatalf("期望 20 个工件，得到 %d 个", len(jobSet.Jobs))
	}
	if jobSet.Name == "" {
		t.Errorf("工件组名称不应该为空")
	}

	// 生成的数据必须直接通过业务校验
	if err := ValidateJobs(jobSet.Jobs); err != nil {
		t.Fatalf("随机工件组应该是合法的：%v", err)
	}

	for _, job := range jobSet.Jobs {
		if job.Family < 1 || job.Family > 4 {
			t.Errorf("工件 %d 的族 %d 超出 [1, 4] 范围", job.ID, job.Family)
		}
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("test-password", "example.com")
	if err != nil {
		t.Fatalf("生成随机用户失败：%v", err)
	}

	if user.Username == "" || user.FullName == "" || user.Email == "" {
		t.Errorf("随机用户的用户名、姓名和邮箱都不能为空")
	}
	if user.PasswordHash == "" {
		t.Errorf("随机用户必须带密码哈希")
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(12)
	if len(password) != 12 {
		t.Fatalf("期望长度为 12 的密码，得到 %d", len(password))
	}
}
