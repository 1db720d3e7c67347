package sqlinline

const QSelectTokenBalance = `--sql 9e350a05-5f84-49cb-849d-62cb7f6a07c8
select amount
from token_balances
where address = $1::text;
`

const QDebitTokenBalance = `--sql 0693363b-2545-4ee4-b00e-24677acc1ea1
update token_balances
set amount = amount - $2::bigint, updated_at = now()
where address = $1::text and amount >= $2::bigint;
`

const QCreditTokenBalance = `--sql 660430d5-071a-4ca0-aba7-0bd5775e7d5f
insert into token_balances(address, amount, updated_at)
values ($1::text, $2::bigint, now())
on conflict (address) do update
set amount = token_balances.amount + excluded.amount, updated_at = now();
`

const QSpendTokenAllowance = `--sql bd9b06c9-8f4c-49da-a755-7e1d77b78378
update token_allowances
set amount = amount - $3::bigint, updated_at = now()
where owner = $1::text and spender = $2::text and amount >= $3::bigint;
`

const QUpsertTokenAllowance = `--sql 7a4f19c5-f1ac-4871-9bd4-2dace57aeb2a
insert into token_allowances(owner, spender, amount, updated_at)
values ($1::text, $2::text, $3::bigint, now())
on conflict (owner, spender) do update
set amount = excluded.amount, updated_at = now();
`

const QSelectTokenAllowance = `--sql 2bdedc8f-e140-4ce0-83d9-833b807ada62
select amount
from token_allowances
where owner = $1::text and spender = $2::text;
`
